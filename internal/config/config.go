package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Manse/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Manse"
	AppID             = "com.github.tartampluch.go-manse"
	BinaryName        = "go-manse"
	KeyringService    = "com.github.tartampluch.go-manse"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SettingsFileName  = "config.toml"
	LayoutFileName    = "print.toml"
	FeedbackFileName  = "feedback.db"
	DefaultTableFile  = "manse_db.sqlite"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs, settings and the feedback database.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug    = "debug"
	FlagTable    = "table"
	FlagConfig   = "config"
	FlagLang     = "lang"
	FlagJSON     = "json"
	FlagTime     = "time"
	FlagSlot     = "slot"
	FlagRegion   = "region"
	FlagCalendar = "calendar"
	FlagBlood    = "blood"
	FlagRhMinus  = "rh-minus"
	FlagPort     = "port"
	FlagOutput   = "output"
	FlagLayout   = "layout"
	FlagUser     = "user"
	FlagStrict   = "strict"
	FlagContacts = "contacts"
	FlagName     = "name"

	FlagDescDebug    = "Enable debug logging"
	FlagDescTable    = "Path to the SQLite calendar table"
	FlagDescConfig   = "Path to the TOML settings file"
	FlagDescLang     = "Language for messages (en, ko)"
	FlagDescJSON     = "Print the result as JSON"
	FlagDescTime     = "Birth time as HHMM (empty for unknown)"
	FlagDescSlot     = "Birth time as one of the twelve branch slots (e.g. zi, chou)"
	FlagDescRegion   = "Birth region for true solar time (e.g. seoul, busan)"
	FlagDescCalendar = "Calendar of the date: solar, lunar, lunar-leap"
	FlagDescBlood    = "Blood type: A, B, O, AB"
	FlagDescRhMinus  = "Mark the blood type as Rh negative"
	FlagDescPort     = "Port for the HTTP server"
	FlagDescOutput   = "Write output to this file instead of stdout"
	FlagDescLayout   = "Path to the TOML print layout file"
	FlagDescUser     = "Username for a remote vCard source (password read from the keyring)"
	FlagDescStrict   = "Fail if the calendar table holds duplicate keys"
	FlagDescContacts = "vCard file or URL whose lunar birthdays feed /calendar.ics"
	FlagDescName     = "Name shown in the calendar event title"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvTable    = "GO_MANSE_TABLE"
	EnvPort     = "GO_MANSE_PORT"
	EnvLanguage = "GO_MANSE_LANG"
	EnvFeedback = "GO_MANSE_FEEDBACK_DB"
	EnvRegion   = "GO_MANSE_REGION"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "ko"}

// -----------------------------------------------------------------------------
// Calendar Domain
// -----------------------------------------------------------------------------

const (
	// SupportedYearMin and SupportedYearMax bound the precomputed table.
	SupportedYearMin = 1900
	SupportedYearMax = 2050

	// DateInputLength is the length of a YYYYMMDD birth date.
	DateInputLength = 8
	// MinYear is the earliest year a birth date may carry.
	MinYear = 1
	// TimeInputLength is the length of a HHMM birth time.
	TimeInputLength = 4

	DateLayoutInput   = "20060102"
	DateLayoutDisplay = "06.01.02"
	DateLayoutISO     = "2006-01-02"
	TimeLayoutSlot    = "15:04"

	// Slot labels carry their window as "(HH:MM~HH:MM)".
	SlotWindowOpen  = "("
	SlotWindowSep   = "~"
	SlotWindowClose = ")"

	RhNegativeSuffix = "(Rh-)"

	// LeapMonthMarker flags intercalary months in the calenda_data table.
	LeapMonthMarker   = "윤"
	CommonMonthMarker = "평"

	// ICSYearWindow is how many years around "now" the lunar birthday feed covers.
	ICSYearWindow = 1
)

// -----------------------------------------------------------------------------
// Calendar Table Schema (calenda_data)
// -----------------------------------------------------------------------------

const (
	TableName       = "calenda_data"
	ColSolarYear    = "cd_sy"
	ColSolarMonth   = "cd_sm"
	ColSolarDay     = "cd_sd"
	ColLunarYear    = "cd_ly"
	ColLunarMonth   = "cd_lm"
	ColLunarDay     = "cd_ld"
	ColLeap         = "cd_is_yun"
	ColYearHanja    = "cd_hyganjee"
	ColYearHangul   = "cd_kyganjee"
	ColMonthHanja   = "cd_hmganjee"
	ColMonthHangul  = "cd_kmganjee"
	ColDayHanja     = "cd_hdganjee"
	ColDayHangul    = "cd_kdganjee"
	ColHoliday      = "holiday"
	SQLiteDriver    = "sqlite"
	SQLiteReadOnly  = "?mode=ro"
	SQLiteFeedbackQ = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyErrInvalidFormat = "err_invalid_format"
	TKeyErrInvalidDate   = "err_invalid_date"
	TKeyErrInvalidTime   = "err_invalid_time"
	TKeyErrNotFound      = "err_not_found"
	TKeyErrInternal      = "err_internal"
	TKeyErrInvalidOption = "err_invalid_option"

	TKeyLblBirthDate = "lbl_birth_date"
	TKeyLblAge       = "lbl_age"
	TKeyLblBlood     = "lbl_blood_type"
	TKeyLblZodiac    = "lbl_zodiac"
	TKeyLblSolarTime = "lbl_solar_time"
	TKeyLblLunarDate = "lbl_lunar_date"
	TKeyLblSolarDate = "lbl_solar_date"

	TKeyPillarYear  = "pillar_year"
	TKeyPillarMonth = "pillar_month"
	TKeyPillarDay   = "pillar_day"
	TKeyPillarHour  = "pillar_hour"

	TKeyCalSolar       = "cal_solar"
	TKeyCalLunarCommon = "cal_lunar_common"
	TKeyCalLunarLeap   = "cal_lunar_leap"

	TKeyAgeSuffix  = "age_suffix"   // Requires Age
	TKeyEvtSummary = "event_summary" // Requires Name, Age

	// TKeyZodiacPrefix is joined with a zodiac key ("zodiac_rat").
	TKeyZodiacPrefix = "zodiac_"

	TKeyFeedbackThanks = "feedback_thanks"
	TKeyFeedbackEmpty  = "feedback_empty"
	TKeyFeedbackNone   = "feedback_none"
	TKeyFeedbackMiss   = "feedback_missing"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	DefaultPort       = "18081"
	DefaultLanguage   = "ko"
	DefaultRegion     = "unspecified"
	FallbackName      = "Unknown"
	UIDSalt           = "go-manse-v1-" // Salt for deterministic UID generation
	DefaultMaxHistory = 500
	FeedbackPreview   = 40
)

// -----------------------------------------------------------------------------
// Print Layout Defaults (millimetres / points on A4)
// -----------------------------------------------------------------------------

const (
	DefaultBirthTop  = 32.0
	DefaultBirthLeft = 140.0
	DefaultGridTop   = 51.0
	DefaultGridLeft  = 21.0
	DefaultInfoTop   = 78.0
	DefaultInfoLeft  = 47.0
	DefaultBirthFont = 14.0
	DefaultGridFont  = 20.0
	DefaultInfoFont  = 14.0

	PrintSolarMarker = "(+)"
	PrintLunarMarker = "(-)"
	PrintInfoSep     = " - "
	PrintAgeFormat   = "%d세"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Manse//Lunar Birthdays//EN"
	ICalCalName = "Lunar Birthdays"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gomanse"

	// iCal/vCard Fields
	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"
	PropCategories = "CATEGORIES"

	VCardBDAY          = "BDAY"
	VCardFN            = "FN"
	VCardN             = "N"
	VCardParamCalScale = "CALSCALE"

	// CALSCALE values marking a BDAY as a lunar date.
	CalScaleChinese = "chinese"
	CalScaleKorean  = "korean"
	CalScaleLunar   = "lunar"

	ICalCategory       = "BIRTHDAY"
	FallbackSummary    = "%s lunar birthday (%d)" // Requires Name, Age
	DefaultICalRefresh = 24 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts accepted in vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	ExtVCF = ".vcf"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	MaxRequestBodySize  = 64 * 1024
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	// API rate limit: a global token bucket.
	APIRatePerSecond = 20.0
	APIRateBurst     = 40
)

// -----------------------------------------------------------------------------
// HTTP Routes, Query Parameters, Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	RouteHealth      = "/healthz"
	RouteMetrics     = "/metrics"
	RouteCalendar    = "/calendar.ics"
	RoutePrint       = "/print"
	RouteAPI         = "/api"
	RoutePillars     = "/pillars"
	RouteRegions     = "/regions"
	RouteSlots       = "/slots"
	RouteFeedback    = "/feedback"
	RouteFeedbackID  = "/{id}"
	URLParamID       = "id"
	QueryDate        = "date"
	QueryTime        = "time"
	QuerySlot        = "slot"
	QueryRegion      = "region"
	QueryCalendar    = "calendar"
	QueryBlood       = "blood"
	QueryRh          = "rh"
	QueryLang        = "lang"
	QueryName        = "name"
	QueryValueRhNeg  = "-"
	HeaderAcceptLang = "Accept-Language"

	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeHTML            = "text/html; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// API Error Codes
// -----------------------------------------------------------------------------

const (
	CodeInvalidFormat = "invalid_format"
	CodeInvalidDate   = "invalid_date"
	CodeInvalidTime   = "invalid_time"
	CodeInvalidInput  = "invalid_input"
	CodeInvalidOption = "invalid_option"
	CodeNotFound      = "not_found"
	CodeRateLimited   = "rate_limit_exceeded"
	CodeInternal      = "internal_error"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidFormat  = "birth date must be 8 digits (e.g. 19730819)"
	ErrInvalidDate    = "birth date is not a valid calendar date"
	ErrInvalidTime    = "birth time must be 4 digits between 0000 and 2359"
	ErrNotFound       = "no calendar entry for this date (supported range: 1900-2050)"
	ErrCorruptEntry   = "calendar entry holds an unreadable pillar"
	ErrTableOpen      = "failed to open calendar table"
	ErrTableQuery     = "failed to read calendar table"
	ErrTableEmpty     = "calendar table is empty"
	ErrTableDuplicate = "calendar table holds duplicate keys"
	ErrTableMissing   = "calendar table not found"
	ErrUnknownCal     = "unknown calendar kind"
	ErrUnknownRegion  = "unknown region"
	ErrUnknownSlot    = "unknown time slot"
	ErrUnknownBlood   = "unknown blood type"
	ErrInvalidOption  = "invalid option"
	ErrLocalPathEmpty = "configuration error: local path is empty"
	ErrWebURLEmpty    = "configuration error: web URL is empty"
	ErrFetcherMissing = "internal error: network fetcher is not initialized"
	ErrModeUnsupport  = "configuration error: unsupported source mode"
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRequired   = "server port is required"
	ErrPortNumber     = "server port must be a number"
	ErrPortRange      = "server port must be between 1 and 65535"
	ErrInvalidURL     = "invalid URL structure"
	ErrProtocol       = "unsupported protocol scheme (http/https only)"
	ErrVCardParse     = "failed to parse vCard stream"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrDateParse      = "unable to parse date"
	ErrRequestBuild   = "failed to create request"
	ErrNetwork        = "network error during fetch"
	ErrHTTPStatus     = "server returned unexpected status"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrConfigDir      = "could not determine user config dir"
	ErrCreateDir      = "could not create app directory"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
	ErrSettingsLoad   = "failed to load settings"
	ErrSettingsSave   = "failed to save settings"
	ErrLayoutLoad     = "failed to load print layout"
	ErrLayoutSave     = "failed to save print layout"
	ErrLayoutWatch    = "failed to watch print layout"
	ErrPrintRender    = "failed to render print page"
	ErrFeedbackOpen   = "failed to open feedback log"
	ErrFeedbackWrite  = "failed to write feedback"
	ErrFeedbackRead   = "failed to read feedback"
	ErrFeedbackEmpty  = "feedback text is empty"
	ErrFeedbackStatus = "unknown feedback status"
	ErrFeedbackNone   = "feedback entry not found"
	ErrPassSave       = "failed to store password in keyring"
	ErrSettingKey     = "unknown setting"
	ErrLayoutField    = "unknown layout field"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgRateLimited  = "Too many requests. Please try again later."
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgOK           = "ok"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStop        = "Application stopped gracefully"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgHTTPRequest    = "http_request"
	MsgRateLimited    = "rate limit exceeded"
	MsgTableLoaded    = "Calendar table loaded"
	MsgTableDuplicate = "Duplicate calendar key, keeping first row"
	MsgTableNoLeapCol = "Calendar table has no leap column, treating all months as common"
	MsgResolved       = "Pillars resolved"
	MsgResolveFailed  = "Pillar resolution rejected"
	MsgHourOmitted    = "Hour pillar omitted"
	MsgSlotParse      = "Time slot label could not be parsed, ignoring time"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgContactsDone   = "Contacts resolved"
	MsgICSBuilt       = "Lunar birthday calendar built"
	MsgFetchStart     = "Initiating vCard download"
	MsgFetchStatus    = "Server returned error status"
	MsgFetchOK        = "vCards downloading"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgSettingsLoaded = "Settings loaded"
	MsgLayoutDefault  = "Print layout not found, using defaults"
	MsgLayoutReloaded = "Print layout reloaded"
	MsgFeedbackSaved  = "Feedback saved"
	MsgFeedbackStatus = "Feedback status changed"
	MsgSyncDone       = "Calendar sync completed"
	MsgSyncFailed     = "Calendar sync failed"
	MsgPassSaved      = "Password stored in keyring"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "birthdays_found"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDuration  = "duration_ms"
	LogKeyRows      = "rows"
	LogKeyDupes     = "duplicates"
	LogKeyYearMin   = "year_min"
	LogKeyYearMax   = "year_max"
	LogKeyCalendar  = "calendar"
	LogKeyDate      = "date"
	LogKeySolarTime = "solar_time"
	LogKeyRegion    = "region"
	LogKeySlot      = "slot"
	LogKeyPath      = "path"
	LogKeyMethod    = "method"
	LogKeyID        = "id"
	LogKeyEvents    = "events"
	LogKeyLimitType = "limit_type"
	LogKeyLength    = "content_length"
	LogKeyResolved  = "resolved"
	LogKeyFailed    = "failed"
	LogKeyState     = "state"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompAlmanac  = "almanac"
	CompResolver = "resolver"
	CompContacts = "contacts"
	CompCalendar = "calendar"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompFeedback = "feedback"
	CompPrint    = "print"
	CompSettings = "settings"
	CompCLI      = "cli"
	CompMain     = "main"
	CompI18n     = "i18n"
)
