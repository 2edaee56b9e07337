package engine

import (
	"fmt"
	"strconv"
	"strings"
)

type keyKind int

const (
	keyText keyKind = iota
	keyBool
	keyInt
	keyNumber
	keyLength
	keyList
	keyOrientation
	keyColorMode
	keyPaper
)

// keySpec describes one known flat setting. Inert keys are validated and
// stored but have no browser equivalent.
type keySpec struct {
	kind  keyKind
	inert bool
}

var globalKeys = map[string]keySpec{
	"colorMode":      {kind: keyColorMode},
	"orientation":    {kind: keyOrientation},
	"documentTitle":  {kind: keyText},
	"out":            {kind: keyText},
	"size.paperSize": {kind: keyPaper},
	"size.width":     {kind: keyLength},
	"size.height":    {kind: keyLength},
	"margin.top":     {kind: keyLength},
	"margin.bottom":  {kind: keyLength},
	"margin.left":    {kind: keyLength},
	"margin.right":   {kind: keyLength},

	"dpi":            {kind: keyInt, inert: true},
	"imageDPI":       {kind: keyInt, inert: true},
	"imageQuality":   {kind: keyInt, inert: true},
	"pageOffset":     {kind: keyInt, inert: true},
	"copies":         {kind: keyInt, inert: true},
	"outlineDepth":   {kind: keyInt, inert: true},
	"collate":        {kind: keyBool, inert: true},
	"outline":        {kind: keyBool, inert: true},
	"useCompression": {kind: keyBool, inert: true},
	"dumpOutline":    {kind: keyText, inert: true},
	"resolution":     {kind: keyText, inert: true},
	"load.cookieJar": {kind: keyText, inert: true},
}

var objectKeys = func() map[string]keySpec {
	keys := map[string]keySpec{
		"page": {kind: keyText},

		"useExternalLinks": {kind: keyBool, inert: true},
		"useLocalLinks":    {kind: keyBool, inert: true},
		"produceForms":     {kind: keyBool, inert: true},
		"includeInOutline": {kind: keyBool, inert: true},
		"pagesCount":       {kind: keyBool, inert: true},

		"web.background":                 {kind: keyBool},
		"web.loadImages":                 {kind: keyBool},
		"web.enableJavascript":           {kind: keyBool},
		"web.printMediaType":             {kind: keyBool},
		"web.defaultEncoding":            {kind: keyText},
		"web.userStyleSheet":             {kind: keyText},
		"web.enableIntelligentShrinking": {kind: keyBool, inert: true},
		"web.enablePlugins":              {kind: keyBool, inert: true},
		"web.minimumFontSize":            {kind: keyInt, inert: true},

		"load.jsdelay":              {kind: keyInt},
		"load.zoomFactor":           {kind: keyNumber},
		"load.customHeaders":        {kind: keyList},
		"load.cookies":              {kind: keyList, inert: true},
		"load.username":             {kind: keyText, inert: true},
		"load.password":             {kind: keyText, inert: true},
		"load.proxy":                {kind: keyText, inert: true},
		"load.loadErrorHandling":    {kind: keyText, inert: true},
		"load.blockLocalFileAccess": {kind: keyBool, inert: true},
		"load.stopSlowScripts":      {kind: keyBool, inert: true},
		"load.debugJavascript":      {kind: keyBool, inert: true},
		"load.repeatCustomHeaders":  {kind: keyBool, inert: true},
	}
	for _, prefix := range []string{"header", "footer"} {
		keys[prefix+".fontSize"] = keySpec{kind: keyInt}
		keys[prefix+".fontName"] = keySpec{kind: keyText}
		keys[prefix+".left"] = keySpec{kind: keyText}
		keys[prefix+".center"] = keySpec{kind: keyText}
		keys[prefix+".right"] = keySpec{kind: keyText}
		keys[prefix+".line"] = keySpec{kind: keyBool}
		keys[prefix+".spacing"] = keySpec{kind: keyNumber, inert: true}
		keys[prefix+".htmlUrl"] = keySpec{kind: keyText, inert: true}
	}
	return keys
}()

// lookupKey returns the definition of key in the global or object table.
func lookupKey(key string, global bool) (keySpec, bool) {
	if global {
		ks, ok := globalKeys[key]
		return ks, ok
	}
	ks, ok := objectKeys[key]
	return ks, ok
}

// validate checks that value parses as kind.
func (k keyKind) validate(value string) error {
	var err error
	switch k {
	case keyBool:
		_, err = parseBool(value)
	case keyInt:
		_, err = strconv.Atoi(value)
	case keyNumber:
		_, err = strconv.ParseFloat(value, 64)
	case keyLength:
		_, err = parseLengthInches(value)
	case keyOrientation:
		switch strings.ToLower(value) {
		case "portrait", "landscape":
		default:
			err = fmt.Errorf("want Portrait or Landscape")
		}
	case keyColorMode:
		switch strings.ToLower(value) {
		case "color", "grayscale":
		default:
			err = fmt.Errorf("want Color or Grayscale")
		}
	case keyPaper:
		_, err = paperSize(value)
	}
	return err
}

// parseBool accepts the spellings wkhtmltopdf accepts.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}
