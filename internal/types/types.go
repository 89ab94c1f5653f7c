package types

import "time"

// Mood classifies the tone of a wall post. It is optional metadata; an
// empty Mood means the author picked none.
type Mood string

const (
	MoodFunny     Mood = "funny"
	MoodEmotional Mood = "emotional"
	MoodAdvice    Mood = "advice"
	MoodMemory    Mood = "memory"
	MoodShort     Mood = "short"
)

// Moods lists all moods in display order.
func Moods() []Mood {
	return []Mood{MoodFunny, MoodEmotional, MoodAdvice, MoodMemory, MoodShort}
}

// Valid reports whether m is one of the known moods. Callers treat "" as
// absent before checking.
func (m Mood) Valid() bool {
	switch m {
	case MoodFunny, MoodEmotional, MoodAdvice, MoodMemory, MoodShort:
		return true
	}
	return false
}

// Reaction is one of the five emoji reaction kinds.
type Reaction string

const (
	ReactionHeart Reaction = "heart"
	ReactionLaugh Reaction = "laugh"
	ReactionTears Reaction = "tears"
	ReactionStar  Reaction = "star"
	ReactionClap  Reaction = "clap"
)

// Reactions lists all reaction kinds in display order.
func Reactions() []Reaction {
	return []Reaction{ReactionHeart, ReactionLaugh, ReactionTears, ReactionStar, ReactionClap}
}

// Valid reports whether r is one of the known reaction kinds.
func (r Reaction) Valid() bool {
	switch r {
	case ReactionHeart, ReactionLaugh, ReactionTears, ReactionStar, ReactionClap:
		return true
	}
	return false
}

// Post is one farewell wall entry. Message, Mood, the photo fields and
// LanguageHint are optional; an empty string means absent.
type Post struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Message      string    `json:"message,omitempty"`
	Mood         Mood      `json:"mood,omitempty"`
	PhotoPath    string    `json:"photo_path,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	LanguageHint string    `json:"language_hint,omitempty"`
	IsHidden     bool      `json:"is_hidden"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPost is the insert payload for a post. The store assigns the ID and
// the creation timestamp.
type NewPost struct {
	Name         string
	Message      string
	Mood         Mood
	PhotoPath    string
	PhotoURL     string
	LanguageHint string
}

// ReactionRow is one stored reaction referencing a post.
type ReactionRow struct {
	MessageID string    `json:"message_id"`
	Reaction  Reaction  `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionCount tallies reactions for one post. All five kinds are always
// present, defaulting to zero.
type ReactionCount map[Reaction]int

// ZeroCounts returns a tally with every reaction kind at zero.
func ZeroCounts() ReactionCount {
	return ReactionCount{
		ReactionHeart: 0,
		ReactionLaugh: 0,
		ReactionTears: 0,
		ReactionStar:  0,
		ReactionClap:  0,
	}
}

// Total sums the tally across all kinds.
func (c ReactionCount) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Clone returns an independent copy of the tally with all kinds present.
func (c ReactionCount) Clone() ReactionCount {
	out := ZeroCounts()
	for k, n := range c {
		out[k] = n
	}
	return out
}
