package types

// Box is a bounding box with coordinates normalized to [0,1].
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Scale converts b to a rectangle in a space of the given size.
func (b Box) Scale(s Size) Rect {
	return R(b.X*s.Width, b.Y*s.Height, b.W*s.Width, b.H*s.Height)
}

// Primary is the primary subject reported by a vision model.
type Primary struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// AnalysisResult is the JSON document a vision model is asked to return.
type AnalysisResult struct {
	Primary     Primary  `json:"primary"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
