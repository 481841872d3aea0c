package usecase

import (
	"bytes"
	"encoding/json"

	"github.com/xavierca1/lead-caller/internal/entity"
)

type EnquireInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Consent Truthy `json:"consent"`
}

type EnquireOutput struct {
	OK      bool   `json:"ok"`
	LeadID  string `json:"leadId"`
	Message string `json:"message"`
}

type RecordCallEventOutput struct {
	Matched bool
	Lead    *entity.Lead
}

// Truthy decodes any JSON value using JavaScript truthiness: false, null, 0
// and "" are false, everything else (including "false" and {}) is true.
type Truthy bool

func (t *Truthy) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte(`""`)):
		*t = false
		return nil
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*t = f != 0
		return nil
	}
	*t = true
	return nil
}
