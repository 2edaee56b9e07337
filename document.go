package html2pdf

// Document is one conversion request: global settings plus the ordered
// content objects that become its pages.
//
// A Document must not be modified after it has been passed to Convert.
type Document struct {
	Global  *GlobalSettings
	Objects []*ContentObject
}

// ContentObject is one page source: resolved markup plus its settings.
type ContentObject struct {
	Settings *ObjectSettings
	Content  string
}

// NewDocument creates a Document from global settings and objects.
func NewDocument(global *GlobalSettings, objects ...*ContentObject) *Document {
	return &Document{Global: global, Objects: objects}
}

// NewObject creates a ContentObject. settings may be nil.
func NewObject(content string, settings *ObjectSettings) *ContentObject {
	return &ContentObject{Settings: settings, Content: content}
}

// Add appends an object and returns d for chaining.
func (d *Document) Add(obj *ContentObject) *Document {
	d.Objects = append(d.Objects, obj)
	return d
}

// Validate reports whether d can be converted. Nil objects are ignored,
// so a document holding only nil objects is empty.
func (d *Document) Validate() error {
	if d == nil {
		return ErrNilDocument
	}
	if d.objectCount() == 0 {
		return ErrNoObjects
	}
	return nil
}

// objectCount returns the number of non-nil objects.
func (d *Document) objectCount() int {
	n := 0
	for _, o := range d.Objects {
		if o != nil {
			n++
		}
	}
	return n
}
