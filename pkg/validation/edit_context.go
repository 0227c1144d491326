package validation

import (
	"cmp"
	"slices"
	"sync"
)

// Notifier is informed when a bound field's value changes.
type Notifier interface {
	NotifyFieldChanged(field FieldIdentifier)
}

// Validator returns an error message for the current field value, or an
// empty string when the value is valid. Validators run while the context is
// locked and must not call back into it.
type Validator func() string

type fieldState struct {
	modified  bool
	validator Validator
	message   string
}

type changeHandler struct {
	id int
	fn func(FieldIdentifier)
}

// EditContext tracks edits to a model and validates its fields.
//
// Autovalidate behavior mirrors a drift Form: when enabled, a field is
// validated when it reports a change, while untouched fields keep no
// messages until Validate is called explicitly.
//
// EditContext is safe for concurrent use. Change handlers run after the
// internal lock is released and may call back into the context.
type EditContext struct {
	model any

	mu           sync.Mutex
	fields       map[FieldIdentifier]*fieldState
	handlers     []changeHandler
	nextHandler  int
	autovalidate bool
}

var _ Notifier = (*EditContext)(nil)

// NewEditContext returns an edit context for model.
func NewEditContext(model any) *EditContext {
	return &EditContext{
		model:  model,
		fields: make(map[FieldIdentifier]*fieldState),
	}
}

// Model returns the model being edited.
func (c *EditContext) Model() any {
	return c.model
}

// Field returns the identifier of fieldName on this context's model.
func (c *EditContext) Field(fieldName string) FieldIdentifier {
	return NewFieldIdentifier(c.model, fieldName)
}

// SetAutovalidate enables validation of a field whenever it changes.
func (c *EditContext) SetAutovalidate(enabled bool) {
	c.mu.Lock()
	c.autovalidate = enabled
	c.mu.Unlock()
}

// OnFieldChanged subscribes fn to field changes. The returned function
// removes the subscription.
func (c *EditContext) OnFieldChanged(fn func(FieldIdentifier)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextHandler++
	id := c.nextHandler
	c.handlers = append(c.handlers, changeHandler{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.handlers = slices.DeleteFunc(c.handlers, func(h changeHandler) bool {
			return h.id == id
		})
	}
}

// NotifyFieldChanged marks field as modified, validates it when
// autovalidate is on, and informs subscribers. A field whose model is not
// comparable is not tracked, but subscribers are still informed.
func (c *EditContext) NotifyFieldChanged(field FieldIdentifier) {
	c.mu.Lock()
	if state := c.stateLocked(field); state != nil {
		state.modified = true
		if c.autovalidate {
			c.validateLocked(state)
		}
	}
	handlers := slices.Clone(c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h.fn(field)
	}
}

// IsModified reports whether any of the given fields changed since the
// last MarkAsUnmodified. With no arguments it reports whether any field
// changed.
func (c *EditContext) IsModified(fields ...FieldIdentifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(fields) == 0 {
		for _, s := range c.fields {
			if s.modified {
				return true
			}
		}
		return false
	}
	for _, f := range fields {
		if s := c.lookupLocked(f); s != nil && s.modified {
			return true
		}
	}
	return false
}

// MarkAsUnmodified clears the modified flag of the given fields, or of all
// fields when none are given.
func (c *EditContext) MarkAsUnmodified(fields ...FieldIdentifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(fields) == 0 {
		for _, s := range c.fields {
			s.modified = false
		}
		return
	}
	for _, f := range fields {
		if s := c.lookupLocked(f); s != nil {
			s.modified = false
		}
	}
}

// SetValidator installs the validator for field. A nil validator removes it
// and clears the field's message.
func (c *EditContext) SetValidator(field FieldIdentifier, validator Validator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.stateLocked(field)
	if state == nil {
		return
	}
	state.validator = validator
	if validator == nil {
		state.message = ""
	}
}

// ValidateField runs the validator of field and reports whether it passed.
func (c *EditContext) ValidateField(field FieldIdentifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.stateLocked(field)
	if state == nil {
		return true
	}
	return c.validateLocked(state)
}

// Validate runs every validator and reports whether all passed.
func (c *EditContext) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	valid := true
	for _, s := range c.fields {
		if !c.validateLocked(s) {
			valid = false
		}
	}
	return valid
}

// Message returns the current validation message of field.
func (c *EditContext) Message(field FieldIdentifier) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.lookupLocked(field); s != nil {
		return s.message
	}
	return ""
}

// Messages returns every current validation message ordered by field name.
func (c *EditContext) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	type entry struct{ name, message string }
	var entries []entry
	for f, s := range c.fields {
		if s.message != "" {
			entries = append(entries, entry{f.FieldName, s.message})
		}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.name, b.name)
	})
	messages := make([]string, len(entries))
	for i, e := range entries {
		messages[i] = e.message
	}
	return messages
}

// lookupLocked returns the state of field, or nil if it has none.
func (c *EditContext) lookupLocked(field FieldIdentifier) *fieldState {
	if !field.trackable() {
		return nil
	}
	return c.fields[field]
}

// stateLocked returns the state of field, creating it on first use. It
// returns nil for fields that cannot be tracked.
func (c *EditContext) stateLocked(field FieldIdentifier) *fieldState {
	if !field.trackable() {
		return nil
	}
	s, ok := c.fields[field]
	if !ok {
		s = &fieldState{}
		c.fields[field] = s
	}
	return s
}

func (c *EditContext) validateLocked(s *fieldState) bool {
	if s.validator == nil {
		s.message = ""
		return true
	}
	s.message = s.validator()
	return s.message == ""
}
