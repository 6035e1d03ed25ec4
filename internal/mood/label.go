// Package mood scores free-text replies for sentiment and tracks mood context.
package mood

// Label identifies a conversational mood.
type Label string

const (
	Initial  Label = "Initial"
	Happy    Label = "Happy"
	Sad      Label = "Sad"
	Angry    Label = "Angry"
	Stressed Label = "Stressed"
	Calm     Label = "Calm"
)

var allLabels = []Label{Initial, Happy, Sad, Angry, Stressed, Calm}

// Labels returns every mood label, Initial first.
func Labels() []Label {
	out := make([]Label, len(allLabels))
	copy(out, allLabels)
	return out
}

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	for _, known := range allLabels {
		if l == known {
			return true
		}
	}
	return false
}

// IsNegative reports whether l is Sad, Angry or Stressed.
func (l Label) IsNegative() bool {
	return l == Sad || l == Angry || l == Stressed
}

// Transition returns the mood context that follows current once detected has
// been scored. A single positive reply after a negative context lands on Calm
// instead of Happy.
func Transition(current, detected Label) Label {
	if detected == Happy && (current == Sad || current == Angry || current == Stressed) {
		return Calm
	}
	return detected
}
