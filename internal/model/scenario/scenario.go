package scenario

// Difficulty is the fixed three-level rating shown on scenario cards.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Valid reports whether d is one of the three known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Scenario describes one conversation setting exposed to the frontend.
type Scenario struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
	ImageURL     string     `json:"imageUrl"`
	Language     string     `json:"language"`
	LanguageCode string     `json:"lcode"`
}

// Seed provides the built-in scenarios shipped with the product.
func Seed() []Scenario {
	return []Scenario{
		{
			ID:           "chinese_waiter",
			Title:        "Restaurant Order",
			Description:  "Practice ordering food and drinks at a chinese restaurant",
			Category:     "Dining",
			Difficulty:   Beginner,
			ImageURL:     "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?w=400&h=250&fit=crop",
			Language:     "Chinese",
			LanguageCode: "zh",
		},
		{
			ID:           "japanese_barista",
			Title:        "Coffee Shop Order",
			Description:  "Learn how to speak Japanese through ordering coffee",
			Category:     "Dining",
			Difficulty:   Intermediate,
			ImageURL:     "https://images.pexels.com/photos/2159065/pexels-photo-2159065.jpeg",
			Language:     "Japanese",
			LanguageCode: "ja",
		},
		{
			ID:           "malay_teacher",
			Title:        "School Lesson",
			Description:  "Learn how to converse in Malay with a teacher",
			Category:     "Education",
			Difficulty:   Advanced,
			ImageURL:     "https://thumbs.dreamstime.com/b/beautiful-malay-teacher-wearing-traditional-cloth-school-malay-school-teacher-150440571.jpg",
			Language:     "Malay",
			LanguageCode: "my",
		},
	}
}
