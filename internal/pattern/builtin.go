package pattern

// builtinServiceOrder fixes the iteration order used for persistence and for
// full fallback scans.
var builtinServiceOrder = []string{
	"YouTube",
	"VK",
	"RuTube",
	"Odnoklassniki",
	"Mail.ru",
	"TikTok",
	"Bilibili",
	"Twitch",
	"Vimeo",
	"Facebook",
	"Instagram",
	"Telegram",
	"Dailymotion",
	"Coub",
}

var builtinPatterns = map[string][]string{
	"YouTube": {
		`^https?://(?:www\.)?youtube\.com/watch\?v=[\w-]{11}(?:&\S*)?$`,
		`^https?://youtu\.be/[\w-]{11}(?:\?\S*)?$`,
		`^https?://(?:www\.)?youtube\.com/shorts/[\w-]{11}(?:\?\S*)?$`,
		`^https?://(?:www\.)?youtube\.com/embed/[\w-]{11}(?:\?\S*)?$`,
		`^https?://(?:www\.)?youtube\.com/playlist\?list=[\w-]+(?:&\S*)?$`,
		`^https?://(?:www\.)?youtube\.com/(?:channel|c|user)/[\w-]+(?:/\S*)?$`,
		`^https?://(?:www\.)?youtube\.com/\S+[\?&]v=[\w-]{11}(?:&\S*)?$`,
		`^https?://music\.youtube\.com/watch\?v=[\w-]{11}(?:&\S*)?$`,
		`^https?://music\.youtube\.com/playlist\?list=[\w-]+(?:&\S*)?$`,
		`^https?://(?:www\.)?youtube\.com/clip/[\w-]+(?:\?\S*)?$`,
	},
	"VK": {
		`^https?://(?:www\.)?vk\.com/video-?\d+_\d+(?:\?\S*)?$`,
		`^https?://(?:www\.)?vkvideo\.ru/video-?\d+_\d+(?:\?\S*)?$`,
		`^https?://(?:www\.)?vk\.com/(?:video|clip)-?\d+(?:_\d+)?(?:\?\S*)?$`,
		`^https?://(?:www\.)?vk\.com/videos-?\d+(?:\?\S*)?$`,
		`^https?://(?:www\.)?vk\.com/clips-?\d+(?:\?\S*)?$`,
		`^https?://(?:m\.)?vk\.com/video(?:_ext)?\.php\?\S*oid=-?\d+\S*id=\d+\S*$`,
	},
	"RuTube": {
		`^https?://(?:www\.)?rutube\.ru/video/[\w-]{32}/?(?:\?\S*)?$`,
		`^https?://(?:www\.)?rutube\.ru/play/embed/[\w-]{32}/?(?:\?\S*)?$`,
	},
	"Odnoklassniki": {
		`^https?://(?:www\.)?ok\.ru/video/\d+(?:\?\S*)?$`,
	},
	"Mail.ru": {
		`^https?://(?:www\.)?my\.mail\.ru/(?:[\w/]+/)?video/(?:[\w/]+/)\d+\.html(?:\?\S*)?$`,
	},
	"TikTok": {
		`^https?://(?:www\.)?tiktok\.com/@[\w\.-]+/video/\d+(?:\?\S*)?$`,
		`^https?://(?:vm|vt)\.tiktok\.com/[\w\.-]+/?(?:\?\S*)?$`,
	},
	"Bilibili": {
		`^https?://(?:www\.)?bilibili\.com/video/(?:BV[\w]+|av\d+)/?(?:\?\S*)?$`,
		`^https?://b23\.tv/[\w]+/?(?:\?\S*)?$`,
	},
	"Twitch": {
		`^https?://(?:www\.)?twitch\.tv/videos/\d+(?:\?\S*)?$`,
		`^https?://(?:www\.)?twitch\.tv/[\w]+/clip/[\w-]+(?:\?\S*)?$`,
		`^https?://clips\.twitch\.tv/[\w-]+(?:\?\S*)?$`,
	},
	"Vimeo": {
		`^https?://(?:www\.)?vimeo\.com/\d+(?:\?\S*)?$`,
		`^https?://player\.vimeo\.com/video/\d+(?:\?\S*)?$`,
	},
	"Facebook": {
		`^https?://(?:www\.)?facebook\.com/\S+/videos/\d+/?(?:\?\S*)?$`,
		`^https?://(?:www\.)?facebook\.com/watch/?\?v=\d+(?:&\S*)?$`,
		`^https?://fb\.watch/[\w-]+/?(?:\?\S*)?$`,
	},
	"Instagram": {
		`^https?://(?:www\.)?instagram\.com/(?:p|reel|tv)/[\w-]+/?(?:\?\S*)?$`,
	},
	"Telegram": {
		`^https?://t\.me/[\w]+/\d+(?:\?\S*)?$`,
	},
	"Dailymotion": {
		`^https?://(?:www\.)?dailymotion\.com/video/[\w]+(?:\?\S*)?$`,
	},
	"Coub": {
		`^https?://(?:www\.)?coub\.com/view/[\w]+(?:\?\S*)?$`,
	},
}

// builtinDomains maps registered domains to their service. The classifier
// seeds its trie and its substring fallback from this table.
var builtinDomains = map[string]string{
	"youtube.com":       "YouTube",
	"youtu.be":          "YouTube",
	"music.youtube.com": "YouTube",
	"vk.com":            "VK",
	"vkvideo.ru":        "VK",
	"rutube.ru":         "RuTube",
	"ok.ru":             "Odnoklassniki",
	"mail.ru":           "Mail.ru",
	"my.mail.ru":        "Mail.ru",
	"bilibili.com":      "Bilibili",
	"b23.tv":            "Bilibili",
	"tiktok.com":        "TikTok",
	"vm.tiktok.com":     "TikTok",
	"vt.tiktok.com":     "TikTok",
	"twitch.tv":         "Twitch",
	"clips.twitch.tv":   "Twitch",
	"vimeo.com":         "Vimeo",
	"player.vimeo.com":  "Vimeo",
	"facebook.com":      "Facebook",
	"fb.watch":          "Facebook",
	"instagram.com":     "Instagram",
	"t.me":              "Telegram",
	"dailymotion.com":   "Dailymotion",
	"coub.com":          "Coub",
}

// BuiltinDomains returns a copy of the registered domain table.
func BuiltinDomains() map[string]string {
	out := make(map[string]string, len(builtinDomains))
	for domain, service := range builtinDomains {
		out[domain] = service
	}
	return out
}
