// Package board provides the fixed 40-space board catalog.
//
// The layout is generated once per engine and never mutated except for space
// ownership, which the engine manages.
package board

// Size is the number of spaces on the board.
const Size = 40

// Kind distinguishes purchasable properties from corner sentinels.
type Kind string

const (
	KindProperty Kind = "property"
	KindCorner   Kind = "corner"
)

// Level is the difficulty tier of a property's purchase question.
type Level string

const (
	LevelEasy    Level = "easy"
	LevelMedium  Level = "medium"
	LevelHard    Level = "hard"
	LevelExtreme Level = "extreme"
	// LevelCorner marks the four corner sentinels, which carry no question.
	LevelCorner Level = "corner"
)

// Valid reports whether l names a property tier or the corner marker.
func (l Level) Valid() bool {
	switch l {
	case LevelEasy, LevelMedium, LevelHard, LevelExtreme, LevelCorner:
		return true
	}
	return false
}

// Space is one board position.
//
// Invariant: ID is in [0, Size). OwnerID is nil for corners and for unowned
// properties; at most one player owns a given space.
type Space struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Kind      Kind   `json:"type"`
	Level     Level  `json:"level"`
	Important bool   `json:"isImportant,omitempty"`
	Price     int    `json:"price,omitempty"`
	OwnerID   *int   `json:"ownerId"`
}

// tier groups nine contiguous spaces sharing a price and question level.
type tier struct {
	companies  [8]string
	price      int
	level      Level
	firstColor string // first half of the tier
	lastColor  string // second half of the tier
}

var tiers = [4]tier{
	{
		companies:  [8]string{"Fortinet", "Vercel", "Stripe", "Stack Overflow", "Slack", "Figma", "GitHub", "LinkedIn"},
		price:      50,
		level:      LevelEasy,
		firstColor: "#8B4513",
		lastColor:  "#87CEEB",
	},
	{
		companies:  [8]string{"Raspberry Pi", "Arduino", "Spotify", "Shopify", "ThinkPad", "Intel", "Postman", "OpenAI"},
		price:      100,
		level:      LevelMedium,
		firstColor: "#DA70D6",
		lastColor:  "#FFA500",
	},
	{
		companies:  [8]string{"Tencent", "AMD", "Adobe", "Cisco", "Red Hat", "Azure", "PostgreSQL", "JetBrains"},
		price:      150,
		level:      LevelHard,
		firstColor: "#FF0000",
		lastColor:  "#FFD700",
	},
	{
		companies:  [8]string{"Linux Foundation", "SpaceX", "Docker", "Oracle", "Broadcom", "YouTube", "Meta", "AWS"},
		price:      200,
		level:      LevelExtreme,
		firstColor: "#008000",
		lastColor:  "#0000FF",
	},
}

// corners are the four fixed sentinel spaces.
var corners = map[int]Space{
	0:  {ID: 0, Name: "Start", Color: "#22c55e", Kind: KindCorner, Level: LevelCorner},
	10: {ID: 10, Name: "ChatGPT", Color: "#3b82f6", Kind: KindCorner, Level: LevelCorner},
	20: {ID: 20, Name: "Audit", Color: "#ef4444", Kind: KindCorner, Level: LevelCorner},
	30: {ID: 30, Name: "Coffee Break", Color: "#f59e0b", Kind: KindCorner, Level: LevelCorner},
}

// importantFrom is the first index of the top tier flagged important.
const importantFrom = 37

// Generate builds the fixed board layout.
//
// Postcondition: len(result) == Size; corners sit at 0, 10, 20, 30; each tier
// of nine properties cycles its eight-company roster with wraparound; the two
// highest slots of the top tier are flagged Important; no space has an owner.
func Generate() []Space {
	spaces := make([]Space, Size)
	for i := 0; i < Size; i++ {
		if corner, ok := corners[i]; ok {
			spaces[i] = corner
			continue
		}

		t := tiers[i/10]
		first := i/10*10 + 1
		company := t.companies[(i-first)%len(t.companies)]

		color := t.lastColor
		if i < i/10*10+5 {
			color = t.firstColor
		}

		spaces[i] = Space{
			ID:        i,
			Name:      company,
			Color:     color,
			Kind:      KindProperty,
			Level:     t.level,
			Important: i >= importantFrom,
			Price:     t.price,
		}
	}
	return spaces
}
