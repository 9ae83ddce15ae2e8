package phrases

import "fmt"

// AssetSelector is the CSS selector of the nth asset in a section.
func AssetSelector(section, nth int) string {
	return fmt.Sprintf("#section-%d li.snap-asset:nth-of-type(%d)", section, nth)
}

// SectionRestrictionSelector is the CSS selector of a section's restriction summary.
func SectionRestrictionSelector(section int) string {
	return fmt.Sprintf("#section-%d > div.content > div.snap-restrictions-meta", section)
}

// UploadInputSelector is the CSS selector of a section's drop-file input.
func UploadInputSelector(section string) string {
	return "#snap-drop-file-" + section
}
