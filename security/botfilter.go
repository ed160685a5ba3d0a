// Package security decides which requests are bot traffic and must be
// excluded from impression counting.
package security

import (
	"strings"

	"github.com/mileusna/useragent"
	"github.com/rs/zerolog/log"
)

// Matcher is an external bot-signature check: given a raw user-agent
// string it reports whether the agent is a known bot.
type Matcher func(userAgent string) bool

// DefaultBotList returns the static bots-and-crawlers denylist. Entries are
// matched as substrings of the raw user agent (verbatim and lower-cased)
// and as exact browser family names. The list must only contain known
// non-human agents: false negatives are acceptable, false positives are not.
func DefaultBotList() []string {
	return []string{
		"HeadlessChrome",
		"Googlebot",
		"Bingbot",
		"BingPreview",
		"DuckDuckBot",
		"Baiduspider",
		"YandexBot",
		"Sogou Spider",
		"Exabot",
		"facebot",
		"ia_archiver",
		"Twitterbot",
		"LinkedInBot",
		"Slackbot",
		"WhatsApp",
		"Discordbot",
		"Pinterestbot",
		"TelegramBot",
		"Googlebot-Image",
		"Googlebot-Video",
		"Googlebot-News",
		"Googlebot-Mobile",
		"Googlebot-AdsBot",
		"AdsBot-Google",
		"AdsBot-Google-Mobile",
		"AdsBot-Google-Mobile-Ads",
		"AdsBot-Google-Mobile-Ads-Image",
		"AdsBot-Google-Mobile-Ads-Video",
		"ImagesiftBot",
		"openai.com/bot",
		"ChatGPT",
		"Statping-ng",
		"DotBot",
		"dotbot",
		"YisouSpider",
		"semrush",
		"rss-parser",
		"Amazonbot",
		"perplexity",
	}
}

// aiCrawlerSignatures are substrings identifying AI model crawlers that do
// not always advertise themselves as conventional bots.
var aiCrawlerSignatures = []string{
	"gptbot",
	"claudebot",
	"claude-web",
	"anthropic-ai",
	"ccbot",
	"bytespider",
	"google-extended",
	"perplexitybot",
	"cohere-ai",
	"diffbot",
}

// ParserBotMatcher flags agents the user-agent parser itself classifies as
// bots (generic spider/crawler tokens and the like).
func ParserBotMatcher(userAgent string) bool {
	return useragent.Parse(userAgent).Bot
}

// AICrawlerMatcher flags known AI-crawler signatures.
func AICrawlerMatcher(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	for _, sig := range aiCrawlerSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// BotFilter excludes bot and crawler traffic from counting. The denylist
// and matchers are fixed at construction so tests can substitute their own.
type BotFilter struct {
	bots     []string
	matchers []Matcher
	enabled  bool
}

// NewBotFilter creates a filter over the given denylist and external
// signature matchers.
func NewBotFilter(bots []string, enabled bool, matchers ...Matcher) *BotFilter {
	return &BotFilter{
		bots:     bots,
		matchers: matchers,
		enabled:  enabled,
	}
}

// NewDefaultBotFilter creates a filter with the standard denylist, the
// parser's bot verdict and the AI-crawler signature check.
func NewDefaultBotFilter(enabled bool) *BotFilter {
	return NewBotFilter(DefaultBotList(), enabled, ParserBotMatcher, AICrawlerMatcher)
}

// IsBotTraffic reports whether the request should be excluded from
// counting. browserFamily is the classified family for the same user
// agent. No side effects.
func (f *BotFilter) IsBotTraffic(userAgent, browserFamily string) bool {
	if !f.enabled {
		return false
	}

	for _, bot := range f.bots {
		if strings.Contains(userAgent, bot) || strings.Contains(userAgent, strings.ToLower(bot)) {
			log.Debug().Str("user_agent", userAgent).Str("bot", bot).Msg("Crawler detected in user agent")
			return true
		}
		if browserFamily == bot {
			log.Debug().Str("browser_family", browserFamily).Msg("Crawler detected as browser family")
			return true
		}
	}

	for _, matcher := range f.matchers {
		if matcher(userAgent) {
			log.Debug().Str("user_agent", userAgent).Msg("Bot signature matched")
			return true
		}
	}

	return false
}
