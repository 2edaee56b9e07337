package html2pdf

import "github.com/alnah/go-html2pdf/internal/flatconfig"

// Settings is implemented by every settings type. Fields lists each
// field's backend key, kind and current value.
type Settings = flatconfig.Settings

// OrderedMap is an insertion-ordered list of key/value pairs, used for
// request headers and cookies.
type OrderedMap = flatconfig.OrderedMap

// Pair is one OrderedMap entry. A nil Key or Value is skipped.
type Pair = flatconfig.Pair

// Entry builds a non-null Pair.
func Entry(key, value string) Pair {
	return flatconfig.Entry(key, value)
}

// Compile-time interface checks.
var (
	_ Settings = (*GlobalSettings)(nil)
	_ Settings = (*PaperSize)(nil)
	_ Settings = (*MarginSettings)(nil)
	_ Settings = (*ObjectSettings)(nil)
	_ Settings = (*WebSettings)(nil)
	_ Settings = (*HeaderSettings)(nil)
	_ Settings = (*FooterSettings)(nil)
	_ Settings = (*LoadSettings)(nil)
)

// GlobalSettings apply to the whole output document.
// Every field is optional; nil fields are not sent to the backend.
type GlobalSettings struct {
	ColorMode      *ColorMode
	Orientation    *Orientation
	Paper          *PaperKind // named format, sent as size.paperSize
	PaperSize      *PaperSize // explicit dimensions
	Margins        *MarginSettings
	DPI            *int
	ImageDPI       *int
	ImageQuality   *int
	PageOffset     *int
	Copies         *int
	Collate        *bool
	Outline        *bool
	OutlineDepth   *int
	UseCompression *bool
	DocumentTitle  *string
	Out            *string // output path; empty keeps the result in memory
	CookieJar      *string
}

func (s *GlobalSettings) Fields() []flatconfig.Field {
	return []flatconfig.Field{
		flatconfig.Value("colorMode", s.ColorMode),
		flatconfig.Value("orientation", s.Orientation),
		flatconfig.Value("size.paperSize", s.Paper),
		flatconfig.Nested(s.PaperSize),
		flatconfig.Nested(s.Margins),
		flatconfig.Value("dpi", s.DPI),
		flatconfig.Value("imageDPI", s.ImageDPI),
		flatconfig.Value("imageQuality", s.ImageQuality),
		flatconfig.Value("pageOffset", s.PageOffset),
		flatconfig.Value("copies", s.Copies),
		flatconfig.Bool("collate", s.Collate),
		flatconfig.Bool("outline", s.Outline),
		flatconfig.Value("outlineDepth", s.OutlineDepth),
		flatconfig.Bool("useCompression", s.UseCompression),
		flatconfig.Value("documentTitle", s.DocumentTitle),
		flatconfig.Value("out", s.Out),
		flatconfig.Value("load.cookieJar", s.CookieJar),
	}
}

// PaperSize sets explicit page dimensions as lengths, e.g. "210mm".
type PaperSize struct {
	Width  *string
	Height *string
}

func (s *PaperSize) Fields() []flatconfig.Field {
	return []flatconfig.Field{
		flatconfig.Value("size.width", s.Width),
		flatconfig.Value("size.height", s.Height),
	}
}

// MarginSettings sets page margins as lengths, e.g. "10mm" or "0.5in".
type MarginSettings struct {
	Top    *string
	Bottom *string
	Left   *string
	Right  *string
}

// Margins returns margins with the same length on every side.
func Margins(length string) *MarginSettings {
	return &MarginSettings{Top: Ptr(length), Bottom: Ptr(length), Left: Ptr(length), Right: Ptr(length)}
}

func (s *MarginSettings) Fields() []flatconfig.Field {
	return []flatconfig.Field{
		flatconfig.Value("margin.top", s.Top),
		flatconfig.Value("margin.bottom", s.Bottom),
		flatconfig.Value("margin.left", s.Left),
		flatconfig.Value("margin.right", s.Right),
	}
}

// ObjectSettings apply to one content object (one page source).
type ObjectSettings struct {
	Page             *string // URL or path to load instead of inline content
	UseExternalLinks *bool
	UseLocalLinks    *bool
	ProduceForms     *bool
	IncludeInOutline *bool
	PagesCount       *bool
	Web              *WebSettings
	Header           *HeaderSettings
	Footer           *FooterSettings
	Load             *LoadSettings

	// Extra carries backend keys without a typed field, sent after them.
	Extra []ExtraSetting
}

// ExtraSetting is one untyped backend key. Value must be a bool, a
// number, a string, a fmt.Stringer or a pointer to one; anything else
// fails the conversion with ErrMarshal. A nil Value is skipped.
type ExtraSetting struct {
	Key   string
	Value any
}

func (e ExtraSetting) field() flatconfig.Field {
	switch v := e.Value.(type) {
	case bool:
		return flatconfig.Bool(e.Key, &v)
	case float64:
		return flatconfig.Number(e.Key, &v)
	case float32:
		f := float64(v)
		return flatconfig.Number(e.Key, &f)
	}
	return flatconfig.Value(e.Key, e.Value)
}

func (s *ObjectSettings) Fields() []flatconfig.Field {
	fields := []flatconfig.Field{
		flatconfig.Value("page", s.Page),
		flatconfig.Bool("useExternalLinks", s.UseExternalLinks),
		flatconfig.Bool("useLocalLinks", s.UseLocalLinks),
		flatconfig.Bool("produceForms", s.ProduceForms),
		flatconfig.Bool("includeInOutline", s.IncludeInOutline),
		flatconfig.Bool("pagesCount", s.PagesCount),
		flatconfig.Nested(s.Web),
		flatconfig.Nested(s.Header),
		flatconfig.Nested(s.Footer),
		flatconfig.Nested(s.Load),
	}
	for _, e := range s.Extra {
		fields = append(fields, e.field())
	}
	return fields
}

// WebSettings control how the page is rendered.
type WebSettings struct {
	Background                 *bool
	LoadImages                 *bool
	EnableJavascript           *bool
	EnableIntelligentShrinking *bool
	EnablePlugins              *bool
	PrintMediaType             *bool
	MinimumFontSize            *int
	DefaultEncoding            *string
	UserStyleSheet             *string
}

func (s *WebSettings) Fields() []flatconfig.Field {
	return []flatconfig.Field{
		flatconfig.Bool("web.background", s.Background),
		flatconfig.Bool("web.loadImages", s.LoadImages),
		flatconfig.Bool("web.enableJavascript", s.EnableJavascript),
		flatconfig.Bool("web.enableIntelligentShrinking", s.EnableIntelligentShrinking),
		flatconfig.Bool("web.enablePlugins", s.EnablePlugins),
		flatconfig.Bool("web.printMediaType", s.PrintMediaType),
		flatconfig.Value("web.minimumFontSize", s.MinimumFontSize),
		flatconfig.Value("web.defaultEncoding", s.DefaultEncoding),
		flatconfig.Value("web.userStyleSheet", s.UserStyleSheet),
	}
}

// Decoration describes a page header or footer. Left, Center and Right
// accept the substitutions [page], [topage], [date] and [title].
type Decoration struct {
	FontSize *int
	FontName *string
	Left     *string
	Center   *string
	Right    *string
	Line     *bool
	Spacing  *float64
	HTMLURL  *string
}

func (d *Decoration) fields(prefix string) []flatconfig.Field {
	return []flatconfig.Field{
		flatconfig.Value(prefix+".fontSize", d.FontSize),
		flatconfig.Value(prefix+".fontName", d.FontName),
		flatconfig.Value(prefix+".left", d.Left),
		flatconfig.Value(prefix+".center", d.Center),
		flatconfig.Value(prefix+".right", d.Right),
		flatconfig.Bool(prefix+".line", d.Line),
		flatconfig.Number(prefix+".spacing", d.Spacing),
		flatconfig.Value(prefix+".htmlUrl", d.HTMLURL),
	}
}

// HeaderSettings is the decoration printed at the top of each page.
type HeaderSettings Decoration

func (s *HeaderSettings) Fields() []flatconfig.Field {
	return (*Decoration)(s).fields("header")
}

// FooterSettings is the decoration printed at the bottom of each page.
type FooterSettings Decoration

func (s *FooterSettings) Fields() []flatconfig.Field {
	return (*Decoration)(s).fields("footer")
}

// LoadSettings control how the page is loaded.
type LoadSettings struct {
	Username             *string
	Password             *string
	JSDelay              *int // milliseconds
	ZoomFactor           *float64
	BlockLocalFileAccess *bool
	StopSlowScripts      *bool
	DebugJavascript      *bool
	LoadErrorHandling    *string // "abort", "skip" or "ignore"
	Proxy                *string
	CustomHeaders        OrderedMap
	RepeatCustomHeaders  *bool
	Cookies              OrderedMap
}

func (s *LoadSettings) Fields() []flatconfig.Field {
	return []flatconfig.Field{
		flatconfig.Value("load.username", s.Username),
		flatconfig.Value("load.password", s.Password),
		flatconfig.Value("load.jsdelay", s.JSDelay),
		flatconfig.Number("load.zoomFactor", s.ZoomFactor),
		flatconfig.Bool("load.blockLocalFileAccess", s.BlockLocalFileAccess),
		flatconfig.Bool("load.stopSlowScripts", s.StopSlowScripts),
		flatconfig.Bool("load.debugJavascript", s.DebugJavascript),
		flatconfig.Value("load.loadErrorHandling", s.LoadErrorHandling),
		flatconfig.Value("load.proxy", s.Proxy),
		flatconfig.Map("load.customHeaders", s.CustomHeaders),
		flatconfig.Bool("load.repeatCustomHeaders", s.RepeatCustomHeaders),
		flatconfig.Map("load.cookies", s.Cookies),
	}
}
