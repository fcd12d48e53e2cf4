package overlay

// Inset of the title from the container's top-left corner.
const (
	titleInsetX = 8.0
	titleInsetY = 8.0
)

// TitleTag is the tag of a pane title element.
const TitleTag = "title"

// Title is a fixed pane caption. It does not follow the viewport.
type Title struct {
	surface *Surface
	text    string
}

// NewTitle places text at the container's top-left corner.
func NewTitle(surface *Surface, text, color string) *Title {
	surface.Insert(Element{
		Kind:     KindTitle,
		Tag:      TitleTag,
		Position: Position{X: titleInsetX, Y: titleInsetY},
		Text:     text,
		Color:    color,
	})
	return &Title{surface: surface, text: text}
}

// Text returns the caption.
func (t *Title) Text() string { return t.text }

// Remove takes the title off its surface.
func (t *Title) Remove() {
	t.surface.RemoveTagged(TitleTag)
}
