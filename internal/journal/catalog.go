package journal

var categories = []string{
	"Work", "Career", "Studies", "Family", "Friends", "Relationships",
	"Health", "Fitness", "Personal Growth", "Self-care", "Hobbies", "Travel",
	"Nature", "Finance", "Spirituality", "Birthday", "Holiday", "Vacation",
	"Celebration", "Exercise", "Reading", "Writing", "Cooking", "Meditation",
	"Yoga", "Music", "Shopping", "Parenting", "Projects", "Planning", "Reflection",
}

// Categories returns the categories offered when writing an entry.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// SuggestedTags returns the tags offered for quick selection. They mirror the categories.
func SuggestedTags() []string {
	return Categories()
}
