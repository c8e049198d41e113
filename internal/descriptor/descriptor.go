package descriptor

import "github.com/mifan-labs/mifan/internal/prompt"

// SetDefault sets the default of the key prompt, adding a string prompt
// when the descriptor does not declare one.
func (d *Descriptor) SetDefault(key string, value any) {
	p, ok := d.Prompts.Get(key)
	if !ok || p == nil {
		p = &Prompt{Type: prompt.TypeString}
		d.Prompts.Set(key, p)
	}
	p.Default = value
	p.HasDefault = true
}

// Question converts a prompt into the shape a Prompter asks.
func (p *Prompt) Question(name string) prompt.Question {
	q := prompt.Question{
		Name:    name,
		Type:    p.Type,
		Message: p.Message,
		Default: p.Default,
	}
	for _, c := range p.Choices {
		q.Choices = append(q.Choices, prompt.Choice{Name: c.Name, Value: c.Value})
	}
	return q
}
