package insight

import (
	"math/rand/v2"

	"github.com/ashureev/mood-reflect/internal/mood"
)

// QuotePool names a group of quotes.
type QuotePool string

// Quote pools.
const (
	PoolGeneral   QuotePool = "general"
	PoolPositive  QuotePool = "positive"
	PoolUplifting QuotePool = "uplifting"
	PoolCalm      QuotePool = "calm"
)

var quotes = map[QuotePool][]string{
	PoolGeneral: {
		"\"The best way to predict the future is to create it.\" - Peter Drucker",
		"\"Believe you can and you're halfway there.\" - Theodore Roosevelt",
		"\"Your limitation—it's only your imagination.\" - Unknown",
		"\"Push yourself, because no one else is going to do it for you.\" - Unknown",
		"\"Great things never come from comfort zones.\" - Unknown",
		"\"Dream it. Wish it. Do it.\" - Unknown",
		"\"Success doesn’t just find you. You have to go out and get it.\" - Unknown",
		"\"The harder you work for something, the greater you'll feel when you achieve it.\" - Unknown",
		"\"Don’t stop when you’re tired. Stop when you’re done.\" - Unknown",
		"\"Wake up with determination. Go to bed with satisfaction.\" - Unknown",
	},
	PoolPositive: {
		"\"Keep your face always toward the sunshine, and shadows will fall behind you.\" - Walt Whitman",
		"\"Let your unique awesomeness and positive energy inspire confidence in others.\" - Unknown",
		"\"The happiness of your life depends upon the quality of your thoughts.\" - Marcus Aurelius",
		"\"Wherever you go, no matter what the weather, always bring your own sunshine.\" - Anthony J. D'Angelo",
		"\"Positivity always wins... Always.\" - Gary Vaynerchuk",
		"\"Embrace the glorious mess that you are.\" - Elizabeth Gilbert",
		"\"Today is a good day for a good day.\" - Unknown",
	},
	PoolUplifting: {
		"\"It's okay not to be okay. Just don't give up.\" - Unknown",
		"\"Hard times don’t create heroes. It is during the hard times when the 'hero' within us is revealed.\" - Bob Riley",
		"\"This too shall pass.\" - Persian Proverb",
		"\"You are stronger than you think.\" - Unknown",
		"\"Every storm runs out of rain.\" - Maya Angelou",
		"\"Even the darkest night will end and the sun will rise.\" - Victor Hugo",
		"\"Sometimes the bad things that happen in our lives put us directly on the path to the best things that will ever happen to us.\" - Unknown",
		"\"Breathe. It's just a bad day, not a bad life.\" - Unknown",
	},
	PoolCalm: {
		"\"Within you, there is a stillness and a sanctuary to which you can retreat at any time and be yourself.\" - Hermann Hesse",
		"\"Peace comes from within. Do not seek it without.\" - Buddha",
		"\"Calmness is the cradle of power.\" - Josiah Gilbert Holland",
		"\"Simply breathing can be a meditation.\" - Unknown",
		"\"Find peace in the present moment.\" - Unknown",
	},
}

// PoolFor maps a mood to the quote pool shown for it. Unknown and empty
// moods get the general pool.
func PoolFor(l mood.Label) QuotePool {
	switch l {
	case mood.Happy:
		return PoolPositive
	case mood.Sad, mood.Angry, mood.Stressed:
		return PoolUplifting
	case mood.Calm:
		return PoolCalm
	default:
		return PoolGeneral
	}
}

// Quotes returns a copy of the quotes in pool.
func Quotes(pool QuotePool) []string {
	return append([]string(nil), quotes[pool]...)
}

// QuoteFor picks a random quote from the pool for l.
func QuoteFor(l mood.Label, rng *rand.Rand) string {
	pool := quotes[PoolFor(l)]
	return pool[rng.IntN(len(pool))]
}
