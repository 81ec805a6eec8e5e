package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/geniusacademy/registration-service/internal/dto"
	"github.com/geniusacademy/registration-service/internal/wizard"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	stepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	fullStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Strikethrough(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Step-one fields, in on-screen order.
var detailLabels = []string{
	"Parent first name",
	"Parent last name",
	"Parent email",
	"Parent phone",
	"Student first name",
	"Student last name",
	"Location",
	"Current grades (optional)",
	"Year group (e.g. Year 3)",
}

type classesMsg struct {
	classes []dto.ClassStatusResponse
	err     error
}

type submitMsg struct {
	envelope *dto.SubmitEnvelope
	err      error
}

type model struct {
	api *apiClient
	wiz *wizard.Wizard

	inputs   []textinput.Model
	focus    int
	classes  []dto.ClassStatusResponse
	cursor   int
	sigInput textinput.Model

	statusMsg string
	errMsg    string
	done      bool
	result    *dto.SubmitResult
}

func newModel(api *apiClient) model {
	inputs := make([]textinput.Model, len(detailLabels))
	for i, label := range detailLabels {
		in := textinput.New()
		in.Placeholder = label
		in.CharLimit = 100
		inputs[i] = in
	}
	inputs[0].Focus()

	sig := textinput.New()
	sig.Placeholder = "path to signature image (.png/.jpg)"

	return model{
		api:      api,
		wiz:      wizard.New(),
		inputs:   inputs,
		sigInput: sig,
	}
}

func (m model) Init() tea.Cmd {
	return m.loadClasses
}

func (m model) loadClasses() tea.Msg {
	classes, err := m.api.fetchClasses()
	return classesMsg{classes: classes, err: err}
}

func (m model) submitCmd(form url.Values) tea.Cmd {
	return func() tea.Msg {
		envelope, err := m.api.submit(form)
		return submitMsg{envelope: envelope, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case classesMsg:
		if msg.err != nil {
			m.errMsg = "could not load classes: " + msg.err.Error()
			return m, nil
		}
		m.classes = msg.classes
		return m, nil

	case submitMsg:
		m.wiz.FinishSubmit()
		m.statusMsg = ""
		if msg.err != nil {
			m.errMsg = "Save failed: " + msg.err.Error()
			return m, nil
		}
		if !msg.envelope.Success {
			m.errMsg = msg.envelope.Message
			return m, nil
		}
		m.done = true
		m.result = msg.envelope.Data
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}
		if m.wiz.InFlight() {
			// UI is locked until the submission call returns.
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch m.wiz.Step() {
	case wizard.StepDetails:
		return m.updateDetails(msg)
	case wizard.StepClasses:
		return m.updateClasses(msg)
	case wizard.StepPayment:
		return m.updatePayment(msg)
	}
	return m, nil
}

func (m model) updateDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % len(m.inputs)
		return m.refocus(), nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + len(m.inputs) - 1) % len(m.inputs)
		return m.refocus(), nil
	case tea.KeyEnter:
		m.syncDetails()
		if err := m.wiz.Next(); err != nil {
			m.errMsg = err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m model) refocus() model {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m *model) syncDetails() {
	m.wiz.SetDetails(wizard.Details{
		ParentFirstName:  m.inputs[0].Value(),
		ParentLastName:   m.inputs[1].Value(),
		ParentEmail:      m.inputs[2].Value(),
		ParentPhone:      m.inputs[3].Value(),
		StudentFirstName: m.inputs[4].Value(),
		StudentLastName:  m.inputs[5].Value(),
		Location:         m.inputs[6].Value(),
		CurrentGrades:    m.inputs[7].Value(),
		YearGroup:        m.inputs[8].Value(),
	})
}

func (m model) updateClasses(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.classes)-1 {
			m.cursor++
		}
	case " ":
		if m.cursor < len(m.classes) {
			c := m.classes[m.cursor]
			err := m.wiz.Toggle(wizard.ClassChoice{
				ID:        c.ClassID,
				Title:     c.Title,
				Price:     c.Price,
				Available: c.Available,
			})
			if err != nil {
				m.errMsg = err.Error()
			}
		}
	case "enter":
		if err := m.wiz.Next(); err != nil {
			m.errMsg = err.Error()
		}
	case "b", "esc":
		m.wiz.Back()
	}
	return m, nil
}

func (m model) updatePayment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the signature path input has focus, every key belongs to it.
	if m.sigInput.Focused() {
		switch msg.Type {
		case tea.KeyEsc:
			m.sigInput.Blur()
			return m, nil
		case tea.KeyEnter:
			dataURI, err := signatureDataURI(m.sigInput.Value())
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.wiz.SetSignature(dataURI)
			m.sigInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.sigInput, cmd = m.sigInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "t":
		m.wiz.AcceptTerms(!m.wiz.TermsAccepted())
	case "p":
		if m.wiz.PaymentMethod() == "online" {
			m.wiz.SetPaymentMethod("cash")
		} else {
			m.wiz.SetPaymentMethod("online")
		}
	case "s":
		m.sigInput.Focus()
		return m, textinput.Blink
	case "b", "esc":
		m.wiz.Back()
	case "enter":
		return m.beginSubmit()
	}
	return m, nil
}

func (m model) beginSubmit() (tea.Model, tea.Cmd) {
	nonce, err := m.api.fetchNonce()
	if err != nil {
		m.errMsg = "could not reach the server: " + err.Error()
		return m, nil
	}

	form, err := m.wiz.BeginSubmit(nonce)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}

	m.statusMsg = "Processing..."
	return m, m.submitCmd(form)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Student Registration") + "\n")
	b.WriteString(m.stepper() + "\n\n")

	if m.done {
		b.WriteString(okStyle.Render(fmt.Sprintf("Registration saved! Order code: %s", m.result.OrderCode)) + "\n")
		switch {
		case m.result.CheckoutURL != "":
			b.WriteString("Complete payment at: " + m.result.CheckoutURL + "\n")
		case m.result.WCError != "":
			b.WriteString(errStyle.Render("Payment setup issue: "+m.result.WCError) + "\n")
			b.WriteString("Please contact support to complete payment.\n")
		default:
			b.WriteString("Payment is due on your first attendance.\n")
		}
		b.WriteString(helpStyle.Render("press any key to exit"))
		return b.String()
	}

	switch m.wiz.Step() {
	case wizard.StepDetails:
		m.viewDetails(&b)
	case wizard.StepClasses:
		m.viewClasses(&b)
	case wizard.StepPayment:
		m.viewPayment(&b)
	}

	if m.statusMsg != "" {
		b.WriteString("\n" + m.statusMsg)
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errStyle.Render(m.errMsg))
	}
	return b.String()
}

func (m model) stepper() string {
	names := []string{"1 Details", "2 Class Selection", "3 Payment"}
	parts := make([]string, len(names))
	for i, n := range names {
		if wizard.Step(i+1) == m.wiz.Step() {
			parts[i] = activeStyle.Render(n)
		} else {
			parts[i] = stepStyle.Render(n)
		}
	}
	return strings.Join(parts, stepStyle.Render("  ›  "))
}

func (m model) viewDetails(b *strings.Builder) {
	for i, in := range m.inputs {
		cursor := "  "
		if i == m.focus {
			cursor = activeStyle.Render("> ")
		}
		fmt.Fprintf(b, "%s%s: %s\n", cursor, detailLabels[i], in.View())
	}
	b.WriteString(helpStyle.Render("\ntab/↑↓ move · enter continue · ctrl+c quit"))
}

func (m model) viewClasses(b *strings.Builder) {
	if strings.Contains(strings.ToLower(m.wiz.Details().YearGroup), "year 10") ||
		strings.Contains(strings.ToLower(m.wiz.Details().YearGroup), "year 11") {
		b.WriteString("Note: Years 10-11 students must select exactly 2 classes.\n\n")
	}

	for i, c := range m.classes {
		cursor := "  "
		if i == m.cursor {
			cursor = activeStyle.Render("> ")
		}

		line := fmt.Sprintf("%s — £%.2f", c.Title, c.Price)
		switch {
		case m.wiz.IsSelected(c.ClassID):
			line = selectedStyle.Render("✓ " + line)
		case !c.Available:
			line = fullStyle.Render(line + "  (full)")
		default:
			line += fmt.Sprintf("  (%d of %d seats taken)", c.Registered, c.MaxSeats)
		}
		fmt.Fprintf(b, "%s%s\n", cursor, line)
	}

	selected := m.wiz.Selected()
	b.WriteString("\nSelected: ")
	if len(selected) == 0 {
		b.WriteString("none")
	} else {
		names := make([]string, len(selected))
		for i, c := range selected {
			names[i] = c.Title
		}
		b.WriteString(strings.Join(names, ", "))
	}
	b.WriteString(helpStyle.Render("\n\n↑↓ move · space toggle · enter continue · b back"))
}

func (m model) viewPayment(b *strings.Builder) {
	b.WriteString("Summary\n")
	for _, c := range m.wiz.Selected() {
		fmt.Fprintf(b, "  %s - %s  £%.2f\n", m.wiz.Details().Location, c.Title, c.Price)
	}
	fmt.Fprintf(b, "  Monthly Total: £%.2f\n\n", m.wiz.MonthlyTotal())

	fmt.Fprintf(b, "Payment method: %s\n", m.wiz.PaymentMethod())

	terms := "[ ]"
	if m.wiz.TermsAccepted() {
		terms = okStyle.Render("[x]")
	}
	fmt.Fprintf(b, "%s I accept the Terms and Conditions\n", terms)

	sig := "not provided"
	if m.wiz.HasSignature() {
		sig = okStyle.Render("provided")
	}
	fmt.Fprintf(b, "Signature: %s %s\n", sig, m.sigInput.View())

	b.WriteString(helpStyle.Render("\nt terms · p payment method · s signature · enter submit · b back"))
}
