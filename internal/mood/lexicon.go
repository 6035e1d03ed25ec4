package mood

// keywordMoods is the order used for first-max dominant keyword resolution.
var keywordMoods = [...]Label{Happy, Sad, Angry, Stressed, Calm}

// "difficult" belongs to both Sad and Stressed.
var keywords = map[Label]map[string]struct{}{
	Happy: set(
		"happy", "joy", "great", "awesome", "wonderful", "good", "excited", "thrilled",
		"fantastic", "yay", "love", "liked", "enjoy", "fun", "positive", "blessed",
		"cheerful", "amazing", "perfect", "glad", "pleased", "delighted", "elated",
		"celebrate", "success",
	),
	Sad: set(
		"sad", "unhappy", "down", "miserable", "depressed", "tear", "cry", "gloomy",
		"awful", "terrible", "hurt", "lonely", "upset", "discouraged", "mourning", "bad",
		"rough", "low", "blue", "grief", "sorrow", "pain", "difficult",
	),
	Angry: set(
		"angry", "mad", "furious", "pissed", "irritated", "annoyed", "frustrated",
		"enraged", "livid", "rage", "hate", "resentful", "bitter", "aggravated", "fuming",
		"irate", "outraged", "unfair", "unjust",
	),
	Stressed: set(
		"stressed", "overwhelmed", "anxious", "worried", "pressure", "deadline", "busy",
		"frantic", "tension", "difficult", "hard", "struggle", "tired", "exhausted",
		"demanding", "hectic", "swamped", "buried", "tight", "nervous", "panicked",
	),
	Calm: set(
		"calm", "peaceful", "relaxed", "chill", "easy", "smooth", "quiet", "tranquil",
		"restful", "breeze", "steady", "balanced", "mellow", "content", "okay", "fine",
		"alright", "neutral", "manageable", "serene", "composed",
	),
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// IsKeyword reports whether token belongs to the keyword set of l.
func IsKeyword(l Label, token string) bool {
	_, ok := keywords[l][token]
	return ok
}

// KeywordCounts holds per-mood keyword hits for one message.
type KeywordCounts struct {
	Happy, Sad, Angry, Stressed, Calm int
}

// CountKeywords tallies lowercased tokens against every keyword set.
// A token listed in several sets counts once for each.
func CountKeywords(tokens []string) KeywordCounts {
	var c KeywordCounts
	for _, tok := range tokens {
		for _, l := range keywordMoods {
			if IsKeyword(l, tok) {
				*c.slot(l)++
			}
		}
	}
	return c
}

func (c *KeywordCounts) slot(l Label) *int {
	switch l {
	case Happy:
		return &c.Happy
	case Sad:
		return &c.Sad
	case Angry:
		return &c.Angry
	case Stressed:
		return &c.Stressed
	default:
		return &c.Calm
	}
}

// Of returns the count for l.
func (c KeywordCounts) Of(l Label) int {
	return *c.slot(l)
}

// Total is the sum of all five counts.
func (c KeywordCounts) Total() int {
	return c.Happy + c.Sad + c.Angry + c.Stressed + c.Calm
}

// Dominant returns the mood with the highest count. Ties go to the earlier
// mood in Happy, Sad, Angry, Stressed, Calm order. ok is false when no
// keyword matched at all.
func (c KeywordCounts) Dominant() (l Label, count int, ok bool) {
	if c.Total() == 0 {
		return "", 0, false
	}
	l, count = keywordMoods[0], c.Of(keywordMoods[0])
	for _, m := range keywordMoods[1:] {
		if n := c.Of(m); n > count {
			l, count = m, n
		}
	}
	return l, count, true
}
