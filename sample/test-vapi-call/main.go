package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/xavierca1/lead-caller/internal/config"
	"github.com/xavierca1/lead-caller/internal/infra/database"
	"github.com/xavierca1/lead-caller/internal/infra/integration/vapi"
	"github.com/xavierca1/lead-caller/internal/usecase"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

// Places one real outbound call through the configured voice API, using the
// same use case as POST /enquire.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env not found, using process environment")
	}

	phone := flag.String("phone", "", "number to call (10 digits, 91 prefix or E.164)")
	name := flag.String("name", "Test Lead", "lead name passed in the call context")
	flag.Parse()

	cfg := config.Load()
	if cfg.VapiAPIURL == "" || cfg.VapiAPIKey == "" {
		log.Fatal("VAPI_API_URL and VAPI_API_KEY must be set")
	}
	if *phone == "" {
		fmt.Fprintln(os.Stderr, "usage: test-vapi-call -phone 9876543210 [-name Asha]")
		os.Exit(2)
	}

	logger := logging.New("debug")
	repo := database.NewMemoryLeadRepository()
	uc := usecase.NewEnquireUseCase(repo, vapi.NewClient(cfg.VapiAPIURL, cfg.VapiAPIKey, logger), usecase.CallSettings{
		CallerID:          cfg.CallerID,
		WebhookPublicBase: cfg.WebhookPublicBase,
	}, logger)

	fmt.Printf("Calling %s (%s)...\n", *phone, *name)
	out, err := uc.Execute(context.Background(), usecase.EnquireInput{Name: *name, Phone: *phone, Consent: true})
	if err != nil {
		log.Fatalf("call failed: %v", err)
	}

	lead, err := repo.Get(context.Background(), out.LeadID)
	if err != nil {
		log.Fatalf("lead lookup: %v", err)
	}
	fmt.Printf("Lead:    %s\n", lead.ID)
	fmt.Printf("Phone:   %s\n", lead.Phone)
	fmt.Printf("Status:  %s\n", lead.Status)
	fmt.Printf("Call ID: %s\n", lead.VapiCallID)
}
