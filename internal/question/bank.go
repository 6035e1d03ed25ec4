// Package question holds the prompt pools and picks the next prompt to ask.
package question

import (
	"slices"

	"github.com/ashureev/mood-reflect/internal/daypart"
	"github.com/ashureev/mood-reflect/internal/mood"
)

// FallbackPrompt is returned when every pool is empty.
const FallbackPrompt = "Is there anything else on your mind?"

// Bank maps moods and dayparts to ordered prompt pools.
type Bank struct {
	moods map[mood.Label][]string
	times map[daypart.Category][]string
}

// NewBank copies the given pools.
func NewBank(moods map[mood.Label][]string, times map[daypart.Category][]string) *Bank {
	b := &Bank{
		moods: make(map[mood.Label][]string, len(moods)),
		times: make(map[daypart.Category][]string, len(times)),
	}
	for k, v := range moods {
		b.moods[k] = slices.Clone(v)
	}
	for k, v := range times {
		b.times[k] = slices.Clone(v)
	}
	return b
}

// DefaultBank returns the built-in prompt pools.
func DefaultBank() *Bank {
	return NewBank(defaultMoodPrompts, defaultTimePrompts)
}

// MoodPrompts returns the pool for l in presentation order.
func (b *Bank) MoodPrompts(l mood.Label) []string {
	return b.moods[l]
}

// TimePrompts returns the pool for c in presentation order.
func (b *Bank) TimePrompts(c daypart.Category) []string {
	return b.times[c]
}

// IsTimePrompt reports whether prompt belongs to the pool for c.
func (b *Bank) IsTimePrompt(c daypart.Category, prompt string) bool {
	return slices.Contains(b.times[c], prompt)
}

var defaultMoodPrompts = map[mood.Label][]string{
	mood.Initial: {
		"Hello! How was your day overall?",
		"Hi there! Tell me a bit about what you did today?",
		"Hey! What kind of day did you have?",
		"Good day! What's been happening?",
		"How did things go for you today?",
		"What's been the main focus of your day so far?",
		"Anything interesting happen today?",
	},
	mood.Happy: {
		"That's wonderful to hear! What was the absolute best moment?",
		"Fantastic! What put the biggest smile on your face?",
		"Great! Can you share more about what made it so good?",
		"Awesome! What are you feeling most grateful for from today?",
		"Love that positivity! What energy are you carrying into tomorrow?",
		"Excellent! Did anything unexpected but pleasant happen?",
		"Sounds like a success! What accomplishment are you most proud of today?",
		"So glad to hear it! Who did you share these good vibes with?",
	},
	mood.Sad: {
		"I'm really sorry it was a tough day. Is there anything you'd like to share about it?",
		"That sounds difficult. What weighed most heavily on you?",
		"Hearing that makes me sad for you. Was there a particular moment that was hardest?",
		"I'm here to listen. What's been on your mind?",
		"It's okay to have days like this. Is there anything, even small, that brought a tiny bit of comfort?",
		"Take your time. What do you feel you need right now?",
		"That sounds draining. What part of the day felt the longest?",
		"Sending virtual support. Remember to be kind to yourself. What's one small act of self-care you could do?",
	},
	mood.Angry: {
		"It sounds like something really frustrating happened. What got you feeling angry?",
		"Okay, take a deep breath. What specifically triggered that anger?",
		"That sounds infuriating. Can you describe the situation?",
		"Feeling angry is valid. What happened to make you feel this way?",
		"It's tough dealing with anger. What was the core issue?",
		"Did something feel unfair or unjust today?",
		"What was the situation that made you feel provoked?",
		"Sometimes venting helps. What's the main thing you wish had gone differently?",
	},
	mood.Stressed: {
		"It sounds like you had a lot on your plate today. What felt the most overwhelming?",
		"Stress can be exhausting. What was the biggest source of pressure?",
		"Okay, let's unpack that. What tasks or situations were most demanding?",
		"Feeling stressed is tough. What's taking up most of your mental energy?",
		"It sounds like you were juggling a lot. Did you feel like you had enough time or resources?",
		"What felt like the biggest challenge you had to tackle today?",
		"Are there any specific deadlines or expectations causing stress?",
		"What's one thing that might help you feel a little less stressed right now?",
	},
	mood.Calm: {
		"That sounds like a nice, steady day. What contributed to that sense of calm?",
		"Good to hear things were smooth. What was the most peaceful part of your day?",
		"A calm day can be refreshing. Did you have any moments of quiet reflection?",
		"Okay, sounds like things were manageable. What did you enjoy doing at your own pace?",
		"What helped you maintain that sense of balance today?",
		"Were there any particular activities that felt relaxing?",
		"It's good to have those days. What are you looking forward to this evening?",
		"What part of the day felt the most 'neutral' or 'easy'?",
		"How's your energy level feeling right now?",
		"Anything nice planned for the rest of the day/evening?",
	},
}

var defaultTimePrompts = map[daypart.Category][]string{
	daypart.Morning: {
		"Good morning! How did you sleep last night?",
		"Morning! What did you have for breakfast?",
		"What are your main plans or hopes for the day ahead?",
		"Starting the day off - how are you feeling right now?",
		"Get a good rest?",
	},
	daypart.Midday: {
		"How's your day progressing so far?",
		"Taking a break? How is your energy level holding up?",
		"What did you have for lunch?",
		"Anything interesting happen this morning?",
	},
	daypart.Evening: {
		"Good evening! How did your day turn out?",
		"Winding down? What was the highlight of your day?",
		"How was your dinner?",
		"Reflecting on the day, what stands out?",
		"Planning to relax this evening?",
	},
}
