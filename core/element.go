package core

import (
	"encoding/json"
	"fmt"
)

// AutoHeight marks a height that is driven by the element's content.
const AutoHeight = -1.0

type (
	// Kind discriminates the element union. It never changes after creation.
	Kind string

	// ShapeType refines KindShape.
	ShapeType string

	// CardColor is the tint of a card.
	CardColor string

	// Variant is the creatable flavour of an element, one per default constructor.
	Variant int

	Point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	// Size is the element's extent. Height may be AutoHeight for cards and text.
	Size struct {
		Width  float64
		Height float64
	}

	Style struct {
		BorderColor string  `json:"borderColor"`
		BorderWidth float64 `json:"borderWidth"`
	}

	// Content is the variant payload of an element. The set of implementations is
	// closed: CardContent, TextContent, ImageContent, ShapeContent and ArrowContent.
	Content interface {
		kind() Kind
		clone() Content
	}

	CardContent struct {
		Title    string    `json:"title"`
		Items    []string  `json:"items"`
		Color    CardColor `json:"color"`
		Numbered bool      `json:"numbered,omitempty"`
	}

	TextContent struct {
		Text string `json:"text"`
	}

	ImageContent struct {
		Src string `json:"src"`
		Alt string `json:"alt"`
	}

	ShapeContent struct {
		Shape ShapeType
		Style Style
	}

	// ArrowContent carries no payload; an arrow is drawn as a fixed glyph.
	ArrowContent struct{}

	// Element is a single drawable object on a board.
	Element struct {
		ID       string
		Position Point
		Size     Size
		Content  Content
	}
)

const (
	KindCard  Kind = "card"
	KindShape Kind = "shape"
	KindArrow Kind = "arrow"
	KindText  Kind = "text"
	KindImage Kind = "image"
)

const (
	ShapeSquare ShapeType = "square"
	ShapeCircle ShapeType = "circle"
)

const (
	ColorOrange CardColor = "orange"
	ColorBlue   CardColor = "blue"
	ColorGreen  CardColor = "green"
	ColorPurple CardColor = "purple"
	ColorPink   CardColor = "pink"
	ColorYellow CardColor = "yellow"
	ColorGray   CardColor = "gray"
)

const (
	VariantCard Variant = iota
	VariantSquare
	VariantCircle
	VariantArrow
	VariantText
	VariantImage
)

const (
	DefaultText        = "Double-click to edit"
	DefaultImageSrc    = "/api/placeholder/200/150"
	DefaultImageAlt    = "Image placeholder"
	DefaultCardTitle   = "Untitled"
	DefaultBorderColor = "purple"
	DefaultBorderWidth = 2.0
)

func (CardContent) kind() Kind  { return KindCard }
func (TextContent) kind() Kind  { return KindText }
func (ImageContent) kind() Kind { return KindImage }
func (ShapeContent) kind() Kind { return KindShape }
func (ArrowContent) kind() Kind { return KindArrow }

func (c CardContent) clone() Content {
	c.Items = append([]string(nil), c.Items...)
	return c
}
func (c TextContent) clone() Content  { return c }
func (c ImageContent) clone() Content { return c }
func (c ShapeContent) clone() Content { return c }
func (c ArrowContent) clone() Content { return c }

func (c CardColor) valid() bool {
	switch c {
	case ColorOrange, ColorBlue, ColorGreen, ColorPurple, ColorPink, ColorYellow, ColorGray:
		return true
	}
	return false
}

func (v Variant) String() string {
	switch v {
	case VariantCard:
		return "card"
	case VariantSquare:
		return "square"
	case VariantCircle:
		return "circle"
	case VariantArrow:
		return "arrow"
	case VariantText:
		return "text"
	case VariantImage:
		return "image"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// IsAutoHeight reports whether the height follows the content.
func (s Size) IsAutoHeight() bool {
	return s.Height == AutoHeight
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// DefaultElement builds a fully populated element of the given variant anchored at pos.
func DefaultElement(id string, v Variant, pos Point) Element {
	el := Element{ID: id, Position: pos}
	switch v {
	case VariantSquare, VariantCircle:
		shape := ShapeSquare
		if v == VariantCircle {
			shape = ShapeCircle
		}
		el.Size = Size{Width: 100, Height: 100}
		el.Content = ShapeContent{
			Shape: shape,
			Style: Style{BorderColor: DefaultBorderColor, BorderWidth: DefaultBorderWidth},
		}
	case VariantArrow:
		el.Size = Size{Width: 150, Height: 48}
		el.Content = ArrowContent{}
	case VariantText:
		el.Size = Size{Width: 200, Height: AutoHeight}
		el.Content = TextContent{Text: DefaultText}
	case VariantImage:
		el.Size = Size{Width: 200, Height: 150}
		el.Content = ImageContent{Src: DefaultImageSrc, Alt: DefaultImageAlt}
	default:
		el.Size = Size{Width: 240, Height: AutoHeight}
		el.Content = CardContent{Title: DefaultCardTitle, Items: []string{}, Color: ColorOrange}
	}
	return el
}

// Kind returns the discriminator of the element's content.
func (e Element) Kind() Kind {
	if e.Content == nil {
		return ""
	}
	return e.Content.kind()
}

// Variant returns the creatable flavour of the element.
func (e Element) Variant() Variant {
	switch c := e.Content.(type) {
	case ShapeContent:
		if c.Shape == ShapeCircle {
			return VariantCircle
		}
		return VariantSquare
	case ArrowContent:
		return VariantArrow
	case TextContent:
		return VariantText
	case ImageContent:
		return VariantImage
	default:
		return VariantCard
	}
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	if e.Content != nil {
		e.Content = e.Content.clone()
	}
	return e
}

// EditableText returns the text edited in place and whether the kind supports it.
func (e Element) EditableText() (string, bool) {
	switch c := e.Content.(type) {
	case TextContent:
		return c.Text, true
	case CardContent:
		return c.Title, true
	}
	return "", false
}

// WithText returns a copy whose editable text is replaced. Kinds without text are returned as is.
func (e Element) WithText(text string) Element {
	e = e.Clone()
	switch c := e.Content.(type) {
	case TextContent:
		c.Text = text
		e.Content = c
	case CardContent:
		c.Title = text
		e.Content = c
	}
	return e
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min Point
	Max Point
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Union returns the smallest rect covering r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point{X: min(r.Min.X, o.Min.X), Y: min(r.Min.Y, o.Min.Y)},
		Max: Point{X: max(r.Max.X, o.Max.X), Y: max(r.Max.Y, o.Max.Y)},
	}
}

// Height estimates used for content-driven elements.
const (
	textMinHeight   = 30.0
	textLineHeight  = 24.0
	cardChrome      = 56.0
	cardItemHeight  = 20.0
	textCharsPerRow = 0.125 // rough glyphs per px of width
)

// ResolvedHeight returns the height, estimating it from the content when it is AutoHeight.
func (e Element) ResolvedHeight() float64 {
	if !e.Size.IsAutoHeight() {
		return e.Size.Height
	}
	switch c := e.Content.(type) {
	case CardContent:
		return cardChrome + cardItemHeight*float64(len(c.Items))
	case TextContent:
		perRow := int(e.Size.Width * textCharsPerRow)
		if perRow < 1 {
			perRow = 1
		}
		rows := 0
		for _, line := range splitLines(c.Text) {
			rows += 1 + len([]rune(line))/perRow
		}
		return max(textMinHeight, 16+textLineHeight*float64(rows))
	}
	return textMinHeight
}

// Bounds returns the element's axis-aligned bounding box.
func (e Element) Bounds() Rect {
	return Rect{
		Min: e.Position,
		Max: Point{X: e.Position.X + e.Size.Width, Y: e.Position.Y + e.ResolvedHeight()},
	}
}

// Contains reports whether p hits the element's bounds.
func (e Element) Contains(p Point) bool {
	return e.Bounds().Contains(p)
}

func splitLines(s string) []string {
	lines := []string{}
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

type wireSize struct {
	Width  float64         `json:"width"`
	Height json.RawMessage `json:"height"`
}

func (s Size) MarshalJSON() ([]byte, error) {
	height := json.RawMessage(`"auto"`)
	if !s.IsAutoHeight() {
		b, err := json.Marshal(s.Height)
		if err != nil {
			return nil, err
		}
		height = b
	}
	return json.Marshal(wireSize{Width: s.Width, Height: height})
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var w wireSize
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.Width = w.Width
	if len(w.Height) == 0 || string(w.Height) == "null" {
		return fmt.Errorf("size height is required")
	}
	var auto string
	if err := json.Unmarshal(w.Height, &auto); err == nil {
		if auto != "auto" {
			return fmt.Errorf("invalid size height %q", auto)
		}
		s.Height = AutoHeight
		return nil
	}
	if err := json.Unmarshal(w.Height, &s.Height); err != nil {
		return err
	}
	if s.Height < 0 {
		return fmt.Errorf("invalid size height %v", s.Height)
	}
	return nil
}

type wireElement struct {
	ID        string          `json:"id"`
	Type      Kind            `json:"type"`
	ShapeType ShapeType       `json:"shapeType,omitempty"`
	Position  *Point          `json:"position"`
	Size      *Size           `json:"size"`
	Style     *Style          `json:"style,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	w := wireElement{ID: e.ID, Type: e.Kind(), Position: &e.Position, Size: &e.Size}

	var err error
	switch c := e.Content.(type) {
	case CardContent:
		if c.Items == nil {
			c.Items = []string{}
		}
		w.Content, err = json.Marshal(c)
	case TextContent:
		w.Content, err = json.Marshal(c)
	case ImageContent:
		w.Content, err = json.Marshal(c)
	case ShapeContent:
		w.ShapeType = c.Shape
		style := c.Style
		w.Style = &style
	case ArrowContent:
	default:
		return nil, fmt.Errorf("element %s has no content", e.ID)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var w wireElement
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return fmt.Errorf("element id is required")
	}
	if w.Position == nil || w.Size == nil {
		return fmt.Errorf("element %s: position and size are required", w.ID)
	}

	var content Content
	switch w.Type {
	case KindCard:
		var c CardContent
		if err := decodeContent(w, &c); err != nil {
			return err
		}
		if c.Color == "" {
			c.Color = ColorOrange
		}
		if !c.Color.valid() {
			return fmt.Errorf("element %s: unknown card color %q", w.ID, c.Color)
		}
		if c.Items == nil {
			c.Items = []string{}
		}
		content = c
	case KindText:
		var c TextContent
		if err := decodeContent(w, &c); err != nil {
			return err
		}
		content = c
	case KindImage:
		var c ImageContent
		if err := decodeContent(w, &c); err != nil {
			return err
		}
		content = c
	case KindShape:
		if w.ShapeType != ShapeSquare && w.ShapeType != ShapeCircle {
			return fmt.Errorf("element %s: unknown shape type %q", w.ID, w.ShapeType)
		}
		c := ShapeContent{
			Shape: w.ShapeType,
			Style: Style{BorderColor: DefaultBorderColor, BorderWidth: DefaultBorderWidth},
		}
		if w.Style != nil {
			c.Style = *w.Style
		}
		content = c
	case KindArrow:
		content = ArrowContent{}
	default:
		return fmt.Errorf("element %s: unknown type %q", w.ID, w.Type)
	}

	if w.Size.IsAutoHeight() && w.Type != KindCard && w.Type != KindText {
		return fmt.Errorf("element %s: auto height is not allowed for type %s", w.ID, w.Type)
	}

	*e = Element{ID: w.ID, Position: *w.Position, Size: *w.Size, Content: content}
	return nil
}

func decodeContent(w wireElement, into any) error {
	if len(w.Content) == 0 {
		return fmt.Errorf("element %s: content is required for type %s", w.ID, w.Type)
	}
	if err := json.Unmarshal(w.Content, into); err != nil {
		return fmt.Errorf("element %s: %w", w.ID, err)
	}
	return nil
}
