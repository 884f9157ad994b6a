package model

const (
	CategoryBookDigital     = "book-digital"
	CategoryBookPaper       = "book-paper"
	CategorySoundFile       = "sound-file"
	CategorySoundCD         = "sound-cd"
	CategorySoundVinyl      = "sound-vinyl"
	CategoryBookmarkNetwork = "bookmark-network"
)

var categories = []string{
	CategoryBookDigital,
	CategoryBookPaper,
	CategorySoundFile,
	CategorySoundCD,
	CategorySoundVinyl,
	CategoryBookmarkNetwork,
}

// Categories returns the closed set of headline categories in display order.
// The returned slice is a copy.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// IsCategory reports whether code is one of the known categories.
func IsCategory(code string) bool {
	for _, c := range categories {
		if c == code {
			return true
		}
	}
	return false
}
