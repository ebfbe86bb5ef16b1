// Package extindex implements the fixed, versioned filename-extension
// table used by the solid-unit scheduler to group files and by the BCJ
// filter to decide whether a file is an executable.
//
// The table is a static, case-insensitive ordered list grouped by media
// kind (text/code, images, archives/compressed, executables, ...). A
// lookup returns a 1-based index into the table, or 0 for "unknown".
// This table is never regenerated at runtime from a live list — it is
// frozen here, the way the original Radyx ships one compiled-in table
// per release.
package extindex

import "strings"

// group is a contiguous run of extensions sharing a media kind.
type group struct {
	name string
	exts []string
}

// groups is the ordered, versioned extension table. The executables
// group is always last; ExeGroupStart depends on that invariant.
var groups = []group{
	{"text", []string{
		"txt", "md", "markdown", "rst", "log", "csv", "tsv", "json", "xml",
		"yaml", "yml", "toml", "ini", "cfg", "conf",
	}},
	{"source", []string{
		"c", "h", "cc", "cpp", "cxx", "hpp", "hxx", "go", "rs", "ts", "tsx",
		"js", "jsx", "java", "kt", "py", "rb", "php", "cs", "swift", "m",
		"mm", "scala", "lua", "pl", "sh", "bash", "zsh", "sql", "r",
	}},
	{"document", []string{
		"doc", "docx", "odt", "rtf", "pdf", "xls", "xlsx", "ods", "ppt",
		"pptx", "odp", "epub", "mobi",
	}},
	{"image", []string{
		"bmp", "png", "jpg", "jpeg", "gif", "tif", "tiff", "webp", "svg",
		"ico", "heic", "raw", "psd", "xcf",
	}},
	{"audio", []string{
		"mp3", "wav", "flac", "ogg", "opus", "aac", "wma", "m4a", "aiff",
	}},
	{"video", []string{
		"mp4", "mkv", "avi", "mov", "wmv", "flv", "webm", "mpg", "mpeg",
		"m4v", "3gp",
	}},
	{"compressed", []string{
		"zip", "gz", "bz2", "xz", "lz", "lzma", "7z", "rar", "tar", "zst",
		"cab", "arj", "lzh", "z",
	}},
	{"disk", []string{
		"iso", "img", "vhd", "vhdx", "vmdk", "dmg",
	}},
	{"database", []string{
		"db", "sqlite", "sqlite3", "mdb", "accdb",
	}},
	{"font", []string{
		"ttf", "otf", "woff", "woff2", "eot",
	}},
	{"object", []string{
		"o", "obj", "a", "lib", "pdb", "pyc", "class",
	}},
	{"script-exec", []string{
		"msi", "bat", "cmd", "ps1", "vbs", "wsf",
	}},
	{"executable", []string{
		"exe", "dll", "sys", "so", "dylib", "com", "scr", "ocx", "drv",
		"efi", "bin", "elf", "out", "app",
	}},
}

// table maps a lower-cased extension (without the dot) to its 1-based
// index, and exeGroupStart marks the first index belonging to the
// executables group.
var (
	table         = make(map[string]int)
	exeGroupStart int
)

func init() {
	idx := 0
	for gi, g := range groups {
		isExeGroup := gi == len(groups)-1
		if isExeGroup {
			exeGroupStart = idx + 1
		}
		for _, e := range g.exts {
			idx++
			table[e] = idx
		}
	}
}

// Lookup returns the 1-based index of ext (without a leading dot,
// case-insensitive) in the table, or 0 if the extension is unknown.
func Lookup(ext string) int {
	if ext == "" {
		return 0
	}
	return table[strings.ToLower(ext)]
}

// ExeGroupStart returns the lowest ext_index belonging to the
// executables group; IsExecutable(idx) is idx >= ExeGroupStart and
// idx != 0.
func ExeGroupStart() int {
	return exeGroupStart
}

// IsExecutable reports whether extIndex falls in the executables group.
func IsExecutable(extIndex int) bool {
	return extIndex != 0 && extIndex >= exeGroupStart
}

// Count returns the total number of distinct extensions in the table.
func Count() int {
	return len(table)
}
