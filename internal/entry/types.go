package entry

import (
	"mime"
	"path/filepath"
	"strings"
)

// Color is the fixed palette used for fallback icon styling.
type Color int

const (
	ColorGray Color = iota // unknown / generic
	ColorBlue
	ColorTeal
	ColorGreen
	ColorYellow
	ColorOrange
	ColorRed
	ColorPink
	ColorPurple
	ColorSlate
)

var colorNames = [...]string{"gray", "blue", "teal", "green", "yellow", "orange", "red", "pink", "purple", "slate"}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return "gray"
	}
	return colorNames[c]
}

// Symbolic icon names, freedesktop icon naming.
const (
	GenericIcon    = "text-x-generic-symbolic"
	FolderIcon     = "folder-symbolic"
	ImageIcon      = "image-x-generic-symbolic"
	VideoIcon      = "video-x-generic-symbolic"
	AudioIcon      = "audio-x-generic-symbolic"
	ArchiveIcon    = "package-x-generic-symbolic"
	DocumentIcon   = "x-office-document-symbolic"
	SpreadIcon     = "x-office-spreadsheet-symbolic"
	PresentIcon    = "x-office-presentation-symbolic"
	ExecutableIcon = "application-x-executable-symbolic"
	FontIcon       = "font-x-generic-symbolic"
	CodeIcon       = "text-x-script-symbolic"
)

// extraTypes covers extensions the platform mime table commonly lacks.
var extraTypes = map[string]string{
	".txt":      "text/plain",
	".csv":      "text/csv",
	".mp4":      "video/mp4",
	".mov":      "video/quicktime",
	".webm":     "video/webm",
	".mp3":      "audio/mpeg",
	".ogg":      "audio/ogg",
	".wav":      "audio/wav",
	".zip":      "application/zip",
	".tar":      "application/x-tar",
	".gz":       "application/gzip",
	".bmp":      "image/bmp",
	".tif":      "image/tiff",
	".tiff":     "image/tiff",
	".go":       "text/x-go",
	".rs":       "text/rust",
	".py":       "text/x-python",
	".sh":       "application/x-shellscript",
	".md":       "text/markdown",
	".heic":     "image/heic",
	".heif":     "image/heif",
	".webp":     "image/webp",
	".mkv":      "video/x-matroska",
	".flac":     "audio/flac",
	".7z":       "application/x-7z-compressed",
	".xz":       "application/x-xz",
	".desktop":  "application/x-desktop",
	".appimage": "application/vnd.appimage",
	".ttf":      "font/ttf",
	".otf":      "font/otf",
}

// ContentTypeOf guesses a content type from a name. It never touches the
// disk; listings that can sniff content should do so before classifying.
func ContentTypeOf(name string, isDir bool) string {
	if isDir {
		return DirectoryType
	}
	base := filepath.Base(name)
	switch {
	case strings.EqualFold(base, "makefile"):
		return "text/x-makefile"
	case strings.HasPrefix(strings.ToLower(base), "readme") && filepath.Ext(base) == "":
		return "text/x-readme"
	case strings.HasSuffix(base, "~"):
		return "application/x-trash"
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" || ext == base {
		return UnknownType
	}
	if ct, ok := extraTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		ct, _, _ = strings.Cut(ct, ";")
		return strings.TrimSpace(ct)
	}
	return UnknownType
}

// SymbolicIcon maps a content type to a symbolic icon name.
func SymbolicIcon(contentType string) string {
	major, minor, _ := strings.Cut(contentType, "/")
	switch {
	case contentType == DirectoryType:
		return FolderIcon
	case major == "image":
		return ImageIcon
	case major == "video":
		return VideoIcon
	case major == "audio":
		return AudioIcon
	case major == "font":
		return FontIcon
	case isArchive(minor):
		return ArchiveIcon
	case strings.Contains(minor, "spreadsheet") || minor == "vnd.ms-excel":
		return SpreadIcon
	case strings.Contains(minor, "presentation") || minor == "vnd.ms-powerpoint":
		return PresentIcon
	case minor == "pdf" || strings.Contains(minor, "document") || minor == "msword" || minor == "rtf":
		return DocumentIcon
	case minor == "x-executable" || minor == "x-sharedlib" || minor == "vnd.appimage" || minor == "x-desktop":
		return ExecutableIcon
	case minor == "x-shellscript" || (major == "text" && minor != "plain"):
		return CodeIcon
	default:
		return GenericIcon
	}
}

// ColorFor picks the palette color for a content type and icon. The icon is
// consulted first so listings that report their own icons keep a consistent color.
func ColorFor(contentType, icon string) Color {
	switch icon {
	case FolderIcon:
		return ColorBlue
	case ImageIcon:
		return ColorPurple
	case VideoIcon:
		return ColorRed
	case AudioIcon:
		return ColorYellow
	case ArchiveIcon:
		return ColorOrange
	case DocumentIcon, PresentIcon:
		return ColorTeal
	case SpreadIcon, ExecutableIcon:
		return ColorGreen
	case FontIcon:
		return ColorPink
	case CodeIcon:
		return ColorSlate
	}
	if contentType == DirectoryType {
		return ColorBlue
	}
	return ColorGray
}

func isArchive(minor string) bool {
	switch minor {
	case "zip", "gzip", "x-tar", "x-gtar", "x-bzip2", "x-xz", "x-7z-compressed",
		"vnd.rar", "x-rar-compressed", "zstd", "x-compressed-tar", "java-archive":
		return true
	}
	return false
}
