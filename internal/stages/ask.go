package stages

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mifan-labs/mifan/internal/descriptor"
	"github.com/mifan-labs/mifan/internal/engine"
	"github.com/mifan-labs/mifan/internal/expr"
	"github.com/mifan-labs/mifan/internal/fileset"
	"github.com/mifan-labs/mifan/internal/metadata"
	"github.com/mifan-labs/mifan/internal/output"
	"github.com/mifan-labs/mifan/internal/prompt"
	"github.com/mifan-labs/mifan/internal/render"
)

// MaxAttempts bounds how often a question is asked before the stage fails.
const MaxAttempts = 3

// errRejected marks an answer refused by the prompt's own rules.
var errRejected = errors.New("answer rejected")

// Ask returns the stage that asks every declared prompt in order.
func Ask(d *descriptor.Descriptor, p prompt.Prompter) engine.Stage {
	return engine.NewStage("ask", func(ctx context.Context, _ *fileset.FileSet, meta *metadata.Context) error {
		for _, e := range d.Prompts.Entries() {
			if err := askOne(ctx, e.Key, e.Value, p, meta); err != nil {
				return err
			}
		}
		return nil
	})
}

func askOne(ctx context.Context, key string, p *descriptor.Prompt, pr prompt.Prompter, meta *metadata.Context) error {
	if p.When != "" {
		ok, err := expr.Test(string(p.When), meta)
		if err != nil {
			return fmt.Errorf("prompt %s: when: %w", key, err)
		}
		if !ok {
			output.Debug("prompt skipped", "key", key, "when", p.When)
			return nil
		}
	}

	q, err := question(key, p, meta)
	if err != nil {
		return err
	}

	var last error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		answer, err := pr.Ask(ctx, q)
		if err == nil {
			answer, err = accept(p, q, answer)
		}
		if err == nil {
			return meta.Set(key, answer)
		}
		if !errors.Is(err, prompt.ErrInvalidAnswer) && !errors.Is(err, errRejected) {
			return fmt.Errorf("prompt %s: %w", key, err)
		}
		last = err
		output.Warn("invalid answer", "prompt", key, "attempt", attempt, "err", err)
	}
	return fmt.Errorf("prompt %s: giving up after %d attempts: %w", key, MaxAttempts, last)
}

// question builds the prompter question, rendering a templated message and
// default against the answers collected so far.
func question(key string, p *descriptor.Prompt, meta *metadata.Context) (prompt.Question, error) {
	q := p.Question(key)

	if render.HasMarkers([]byte(q.Message)) {
		msg, err := render.String(key+".message", q.Message, meta)
		if err != nil {
			return q, fmt.Errorf("prompt %s: %w", key, err)
		}
		q.Message = msg
	}

	def, err := defaultValue(key, p, meta)
	if err != nil {
		return q, err
	}
	q.Default = def
	return q, nil
}

func accept(p *descriptor.Prompt, q prompt.Question, answer any) (any, error) {
	if s, ok := answer.(string); ok {
		answer = applyFilter(p.Filter, s)
	}

	if p.Required && empty(answer) {
		return nil, fmt.Errorf("%w: a value is required", errRejected)
	}

	if p.Validate != "" {
		if s, ok := answer.(string); ok && s != "" {
			re, err := regexp.Compile(p.Validate)
			if err != nil {
				return nil, fmt.Errorf("validate pattern: %w", err)
			}
			if !re.MatchString(s) {
				return nil, fmt.Errorf("%w: %q does not match %s", errRejected, s, p.Validate)
			}
		}
	}

	if q.Selects() {
		if err := checkChoices(q, answer); err != nil {
			return nil, err
		}
	}
	return answer, nil
}

func checkChoices(q prompt.Question, answer any) error {
	allowed := func(v any) bool {
		for _, c := range q.Choices {
			if reflect.DeepEqual(c.Value, v) {
				return true
			}
		}
		return false
	}

	if q.Multi() {
		list, ok := answer.([]any)
		if !ok {
			return fmt.Errorf("%w: expected a list of choices", errRejected)
		}
		for _, v := range list {
			if !allowed(v) {
				return fmt.Errorf("%w: %v is not one of the choices", errRejected, v)
			}
		}
		return nil
	}
	if !allowed(answer) {
		return fmt.Errorf("%w: %v is not one of the choices", errRejected, answer)
	}
	return nil
}

func applyFilter(name, s string) string {
	switch name {
	case "trim":
		return strings.TrimSpace(s)
	case "lower":
		return cases.Lower(language.Und).String(s)
	case "upper":
		return cases.Upper(language.Und).String(s)
	case "title":
		return cases.Title(language.Und).String(s)
	}
	return s
}

func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}

// Mock returns the stage that merges data into the context instead of
// asking. Seed fields are never overridden.
func Mock(data map[string]any) engine.Stage {
	return engine.NewStage("mock", func(_ context.Context, _ *fileset.FileSet, meta *metadata.Context) error {
		if skipped := meta.Merge(data); len(skipped) > 0 {
			output.Debug("mock keys ignored", "keys", skipped)
		}
		return nil
	})
}
