package message

// Extension tables used when the declared type is missing or ambiguous.
var (
	imageExtensions   = map[string]bool{"jpg": true, "jpeg": true, "png": true}
	stickerExtensions = map[string]bool{"webp": true}
	videoExtensions   = map[string]bool{"mp4": true, "3gp": true}
	audioExtensions   = map[string]bool{"aac": true, "amr": true, "mp3": true, "m4a": true, "ogg": true, "opus": true}
	voiceExtensions   = map[string]bool{"ogg": true, "opus": true}

	documentLabels = map[string]string{
		"pdf":  "PDF Document",
		"doc":  "Word Document",
		"docx": "Word Document",
		"odt":  "Word Document",
		"rtf":  "Word Document",
		"xls":  "Excel Spreadsheet",
		"xlsx": "Excel Spreadsheet",
		"ods":  "Excel Spreadsheet",
		"csv":  "CSV File",
		"ppt":  "PowerPoint Presentation",
		"pptx": "PowerPoint Presentation",
		"odp":  "PowerPoint Presentation",
		"txt":  "Text File",
	}
)

// ambiguousDeclared are transport hints that say "some media" without saying which
var ambiguousDeclared = map[string]bool{
	"":           true,
	"media":      true,
	"file":       true,
	"attachment": true,
}

// DocumentLabel returns the human label for a document extension
func DocumentLabel(ext string) string {
	if label, ok := documentLabels[ext]; ok {
		return label
	}
	return "Document"
}

// mediaTypeFor resolves a media type from the declared hint, then the extension.
func mediaTypeFor(declared, ext string) Type {
	switch declared {
	case "image":
		return TypeImage
	case "sticker":
		return TypeSticker
	case "video":
		return TypeVideo
	case "audio", "voice", "ptt":
		return TypeAudio
	}
	if !ambiguousDeclared[declared] {
		return ""
	}
	switch {
	case imageExtensions[ext]:
		return TypeImage
	case stickerExtensions[ext]:
		return TypeSticker
	case videoExtensions[ext]:
		return TypeVideo
	case audioExtensions[ext]:
		return TypeAudio
	}
	return ""
}
