package icon

// Icon identifies a symbol in the registry.
type Icon int

// Registered symbols.
const (
	Fail Icon = iota
	Success
	Progress
	Play
	Pause
	Muted
	Viewed
	Video
	Link
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "x",
		kaomoji: "(×_×)",
		squares: "■",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "v",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "□",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・_・ヾ",
		squares: "▣",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "▮",
	},
	Muted: {
		emoji:   "🔇",
		nerd:    "",
		plain:   "m",
		kaomoji: "(¬_¬)",
		squares: "▫",
	},
	Viewed: {
		emoji:   "👀",
		nerd:    "",
		plain:   "*",
		kaomoji: "(◉_◉)",
		squares: "▪",
	},
	Video: {
		emoji:   "🎬",
		nerd:    "",
		plain:   "[v]",
		kaomoji: "(⌐■_■)",
		squares: "▤",
	},
	Link: {
		emoji:   "🔗",
		nerd:    "",
		plain:   "->",
		kaomoji: "(☞ﾟヮﾟ)☞",
		squares: "▧",
	},
}
