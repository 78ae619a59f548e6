package bootstrap

import (
	"fmt"

	"ipamd/internal/config"
	"ipamd/internal/database"

	"github.com/charmbracelet/log"
)

// Setup loads the settings, connects the database and seeds the address
// plan when one is configured.
func Setup() error {
	config.ReadSettings()
	config.SetBetweenTime()

	if _, err := database.SetupDB(); err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}

	planFile := config.GetConfig().Bootstrap.PlanFile
	if planFile == "" {
		return nil
	}

	plan, err := LoadPlan(planFile)
	if err != nil {
		return err
	}
	if err := ApplyPlan(plan); err != nil {
		return err
	}
	log.Info("Address plan applied", "file", planFile, "subnets", len(plan.Subnets))
	return nil
}
