package outbound

// ButtonStyle is the visual weight of a button.
type ButtonStyle string

const (
	ButtonPrimary   ButtonStyle = "primary"
	ButtonSecondary ButtonStyle = "secondary"
	ButtonSuccess   ButtonStyle = "success"
	ButtonDanger    ButtonStyle = "danger"
)

// Tone colors the view's embed.
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
	ToneMuted   Tone = "muted"
)

// View is a platform-neutral description of a message: one embed and at most
// one row of interactive components. A View with no Buttons and no Select has
// no interactive affordances.
type View struct {
	Content string
	Title   string
	Body    string
	Fields  []ViewField
	Footer  string
	Tone    Tone
	Buttons []Button
	Select  *Select
}

type ViewField struct {
	Name   string
	Value  string
	Inline bool
}

type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
	Disabled bool
}

type Select struct {
	CustomID    string
	Placeholder string
	Options     []SelectOption
}

type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// Interactive reports whether the view carries any component.
func (v View) Interactive() bool {
	return len(v.Buttons) > 0 || v.Select != nil
}

// Stripped returns the view with every interactive affordance removed.
func (v View) Stripped() View {
	v.Buttons = nil
	v.Select = nil
	return v
}

// Modal is a popup form with text inputs.
type Modal struct {
	CustomID string
	Title    string
	Inputs   []TextInput
}

type TextInput struct {
	CustomID    string
	Label       string
	Placeholder string
	Paragraph   bool
	Required    bool
	MinLength   int
	MaxLength   int
}
