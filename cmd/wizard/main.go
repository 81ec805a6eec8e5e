// The wizard command is the terminal front-end for the registration form:
// the same three-step flow the web form walks through, driven by the
// internal/wizard state machine against a running registration service.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	baseURL := os.Getenv("REGISTRATION_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	p := tea.NewProgram(newModel(newAPIClient(baseURL)))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "wizard error: %v\n", err)
		os.Exit(1)
	}
}
