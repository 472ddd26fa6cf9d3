package catalog

import (
	"github.com/ah-its-andy/anclora-nexus/internal/pricing"
	"github.com/ah-its-andy/anclora-nexus/internal/router"
)

// Default returns the built-in catalog. Documents and images never lead into
// audio or video, so e.g. txt -> flac has no route.
func Default() *Catalog {
	return &Catalog{
		Graph:      defaultGraph(),
		Quality:    defaultQuality(),
		Categories: defaultCategories(),
		Aliases:    defaultAliases(),
		Pricing:    pricing.DefaultTable(),
		Router:     router.DefaultOptions(),
	}
}

func defaultGraph() router.FormatGraph {
	return router.FormatGraph{
		// documents; pdf is the hub
		"txt":  {"pdf", "docx", "html", "md"},
		"md":   {"html", "pdf", "txt"},
		"html": {"pdf", "md", "txt"},
		"docx": {"pdf", "odt", "rtf", "html", "txt"},
		"doc":  {"docx", "pdf", "txt"},
		"odt":  {"docx", "pdf"},
		"rtf":  {"docx", "pdf", "txt"},
		"tex":  {"pdf"},
		"pdf":  {"png", "jpg", "txt", "html", "docx"},

		"epub": {"pdf", "mobi", "txt"},
		"mobi": {"epub"},

		"png":  {"jpg", "webp", "gif", "bmp", "tiff", "ico", "pdf"},
		"jpg":  {"png", "webp", "gif", "bmp", "tiff", "pdf"},
		"webp": {"png", "jpg"},
		"gif":  {"png", "jpg", "webp"},
		"bmp":  {"png", "jpg"},
		"tiff": {"png", "jpg", "pdf"},
		"heic": {"jpg", "png"},
		"ico":  {"png"},
		"svg":  {"png", "pdf"},

		// audio; wav is the hub
		"wav":  {"mp3", "flac", "ogg", "aac", "m4a"},
		"mp3":  {"wav", "ogg", "aac"},
		"flac": {"wav", "mp3"},
		"ogg":  {"wav", "mp3"},
		"aac":  {"wav", "mp3"},
		"m4a":  {"wav", "mp3", "aac"},

		// video; mp4 is the hub
		"mp4":  {"webm", "mkv", "mov", "avi", "gif", "mp3", "wav"},
		"webm": {"mp4", "mkv"},
		"mkv":  {"mp4", "webm"},
		"mov":  {"mp4", "webm"},
		"avi":  {"mp4"},

		"zip": {"tar", "7z"},
		"tar": {"zip", "gz"},
		"gz":  {"tar"},
		"7z":  {"zip"},

		"csv":  {"json", "xlsx", "xml"},
		"json": {"csv", "xml", "yaml"},
		"xml":  {"json"},
		"yaml": {"json"},
		"xlsx": {"csv", "ods", "pdf"},
		"ods":  {"xlsx", "csv"},
		"pptx": {"pdf", "odp", "png"},
		"odp":  {"pptx", "pdf"},
	}
}

func q(lossless bool, score, steps int) router.QualityInfo {
	return router.QualityInfo{Lossless: lossless, QualityScore: score, RecommendedSteps: steps}
}

func defaultQuality() router.QualityTable {
	return router.QualityTable{
		{From: "txt", To: "pdf"}:  q(true, 98, 1),
		{From: "txt", To: "png"}:  q(false, 85, 2),
		{From: "md", To: "html"}:  q(true, 100, 1),
		{From: "html", To: "pdf"}: q(false, 95, 1),
		{From: "docx", To: "pdf"}: q(false, 95, 1),
		{From: "pdf", To: "txt"}:  q(false, 70, 1),
		{From: "pdf", To: "docx"}: q(false, 75, 1),
		{From: "pdf", To: "png"}:  q(false, 90, 1),
		{From: "epub", To: "pdf"}: q(false, 88, 1),
		{From: "png", To: "jpg"}:  q(false, 85, 1),
		{From: "jpg", To: "png"}:  q(false, 95, 1),
		{From: "png", To: "webp"}: q(true, 100, 1),
		{From: "heic", To: "jpg"}: q(false, 90, 1),
		{From: "wav", To: "flac"}: q(true, 100, 1),
		{From: "flac", To: "wav"}: q(true, 100, 1),
		{From: "wav", To: "mp3"}:  q(false, 85, 1),
		{From: "flac", To: "mp3"}: q(false, 80, 1),
		{From: "mp3", To: "wav"}:  q(false, 95, 1),
		{From: "mp4", To: "webm"}: q(false, 85, 1),
		{From: "mp4", To: "gif"}:  q(false, 60, 1),
		{From: "mp4", To: "mp3"}:  q(false, 80, 1),
		{From: "mov", To: "mp4"}:  q(false, 92, 1),
		{From: "csv", To: "json"}: q(true, 100, 1),
		{From: "json", To: "csv"}: q(false, 90, 1),
		{From: "xlsx", To: "csv"}: q(false, 80, 1),
		{From: "zip", To: "tar"}:  q(true, 100, 1),
		{From: "tar", To: "zip"}:  q(true, 100, 1),
	}
}

func defaultCategories() map[string]string {
	groups := map[string][]string{
		"text":         {"txt", "md"},
		"document":     {"pdf", "docx", "doc", "odt", "rtf", "html", "tex"},
		"ebook":        {"epub", "mobi"},
		"image":        {"png", "jpg", "webp", "gif", "bmp", "tiff", "heic", "ico"},
		"vector":       {"svg"},
		"audio":        {"wav", "mp3", "flac", "ogg", "aac", "m4a"},
		"video":        {"mp4", "webm", "mkv", "mov", "avi"},
		"archive":      {"zip", "tar", "gz", "7z"},
		"data":         {"csv", "json", "xml", "yaml"},
		"spreadsheet":  {"xlsx", "ods"},
		"presentation": {"pptx", "odp"},
	}
	return invertGroups(groups)
}

func defaultAliases() map[string]string {
	return map[string]string{
		"jpeg":     "jpg",
		"htm":      "html",
		"markdown": "md",
		"tif":      "tiff",
		"yml":      "yaml",
		"text":     "txt",
		"mpeg4":    "mp4",
	}
}

func invertGroups(groups map[string][]string) map[string]string {
	out := make(map[string]string)
	for category, formats := range groups {
		for _, f := range formats {
			out[router.Normalize(f)] = category
		}
	}
	return out
}
