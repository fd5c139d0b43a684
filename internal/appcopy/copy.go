package appcopy

// All user-facing copy and button labels live here.

type BotCopy struct {
	Commands BotCommandsCopy
	Buttons  BotButtonsCopy
	Prompts  BotPromptsCopy
	Errors   BotErrorsCopy
	Info     BotInfoCopy
	Labels   BotLabelsCopy
}

type BotCommandsCopy struct {
	Start        string
	Help         string
	Register     string
	Login        string
	Logout       string
	Search       string
	Fav          string
	List         string
	Progress     string
	Remove       string
	StartDesc    string
	HelpDesc     string
	RegisterDesc string
	LoginDesc    string
	LogoutDesc   string
	SearchDesc   string
	FavDesc      string
	ListDesc     string
	ProgressDesc string
	RemoveDesc   string
}

type BotButtonsCopy struct {
	AddFavorite string
	Bump        string
	Remove      string
}

type BotPromptsCopy struct {
	Unauthorized     string
	UnknownCommand   string
	UnknownMessage   string
	RegisterUsage    string
	LoginUsage       string
	SearchUsage      string
	FavUsage         string
	ProgressUsage    string
	RemoveUsage      string
	UnknownCategory  string
	NoSearchResults  string
	InvalidSelection string
}

type BotErrorsCopy struct {
	Generic string
}

type BotInfoCopy struct {
	WelcomeTitle     string
	WelcomeSignedIn  string
	WelcomeSignedOut string
	HelpText         string
	Registered       string
	LoggedIn         string
	LoggedOut        string
	SearchHeader     string
	SearchEmpty      string
	Favorited        string
	ListHeader       string
	ListEmpty        string
	ListTab          string
	ProgressSaved    string
	Removed          string
}

type BotLabelsCopy struct {
	ResultItem     string
	ResultLocal    string
	BookmarkItem   string
	ProgressSeason string
	ProgressEp     string
	ProgressVol    string
	ProgressCh     string
	TabAnime       string
	TabManga       string
	TabSeries      string
}

var Copy = BotCopy{
	Commands: BotCommandsCopy{
		Start:        "start",
		Help:         "help",
		Register:     "register",
		Login:        "login",
		Logout:       "logout",
		Search:       "search",
		Fav:          "fav",
		List:         "list",
		Progress:     "progress",
		Remove:       "remove",
		StartDesc:    "Show the welcome message",
		HelpDesc:     "Show help information",
		RegisterDesc: "Create an account: name email password",
		LoginDesc:    "Sign in: email password",
		LogoutDesc:   "Sign out",
		SearchDesc:   "Search: [anime|manga|manhwa|series] query",
		FavDesc:      "Add search result n to favorites",
		ListDesc:     "List favorites: [anime|manga|series] [status] [name]",
		ProgressDesc: "Update progress: id field=value ...",
		RemoveDesc:   "Remove a favorite by id",
	},
	Buttons: BotButtonsCopy{
		AddFavorite: "⭐ %d",
		Bump:        "➕ #%d",
		Remove:      "🗑️ #%d",
	},
	Prompts: BotPromptsCopy{
		Unauthorized:     "🚫 Sorry, you are not authorised to use this bot.",
		UnknownCommand:   "❓ Unknown command. Please use /help.",
		UnknownMessage:   "I’m not sure what you mean. Send /search followed by a title, or /help.",
		RegisterUsage:    "Usage: /register <name> <email> <password>",
		LoginUsage:       "Usage: /login <email> <password>",
		SearchUsage:      "Usage: /search [anime|manga|manhwa|series] <title>",
		FavUsage:         "Usage: /fav <result number> [watching|reading|completed|dropped|plan]",
		ProgressUsage:    "Usage: /progress <id> episode=12 chapter+=1 status=completed",
		RemoveUsage:      "Usage: /remove <id>",
		UnknownCategory:  "Unknown category %q.",
		NoSearchResults:  "Run /search first, then pick a result by its number.",
		InvalidSelection: "There is no result number %d.",
	},
	Errors: BotErrorsCopy{
		Generic: "⚠️ Something went wrong, please try again.",
	},
	Info: BotInfoCopy{
		WelcomeTitle:     "👋 <b>Welcome to AMSVault!</b>",
		WelcomeSignedIn:  "Signed in as <b>%s</b>.",
		WelcomeSignedOut: "Use /register or /login to get started.",
		HelpText: `<b>Commands</b>
/register name email password
/login email password
/logout
/search [anime|manga|manhwa|series] title
/fav n [status]
/list [anime|manga|series] [status] [name]
/progress id episode=12 chapter+=1 status=completed
/remove id`,
		Registered:    "✅ Account created. Signed in as <b>%s</b>.",
		LoggedIn:      "✅ Signed in as <b>%s</b>.",
		LoggedOut:     "👋 Signed out.",
		SearchHeader:  "🔍 <b>Results for “%s”</b>",
		SearchEmpty:   "No results for “%s”.",
		Favorited:     "⭐ <b>%s</b> added to favorites (#%d).",
		ListHeader:    "📋 <b>Your favorites</b>",
		ListEmpty:     "Your list is empty. Use /search to find something to track.",
		ListTab:       "\n<b>%s</b> (%d)",
		ProgressSaved: "✅ Progress saved for #%d.",
		Removed:       "🗑️ Favorite #%d removed.",
	},
	Labels: BotLabelsCopy{
		ResultItem:     "%d. <b>%s</b> [%s]",
		ResultLocal:    " (saved)",
		BookmarkItem:   "#%d <b>%s</b> · %s · %s",
		ProgressSeason: "S%d",
		ProgressEp:     "E%d",
		ProgressVol:    "Vol. %d",
		ProgressCh:     "Ch. %d",
		TabAnime:       "Anime",
		TabManga:       "Manga",
		TabSeries:      "Series",
	},
}
