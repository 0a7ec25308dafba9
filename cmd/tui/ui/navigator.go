package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// navigateMsg asks the model to show the page behind path
type navigateMsg struct {
	path string
}

// ProgramNavigator forwards client redirects into a running tea.Program.
// Redirects raised before Attach are dropped.
type ProgramNavigator struct {
	mu      sync.Mutex
	program *tea.Program
}

// Attach connects the navigator to p
func (n *ProgramNavigator) Attach(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = p
}

// Navigate implements constructcycle.Navigator
func (n *ProgramNavigator) Navigate(path string) {
	n.mu.Lock()
	p := n.program
	n.mu.Unlock()

	if p != nil {
		// Send blocks until the event loop reads the message
		go p.Send(navigateMsg{path: path})
	}
}
