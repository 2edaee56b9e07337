// Package flatconfig flattens settings trees into the ordered key/value
// sequence expected by flat configuration backends.
//
// Settings types describe themselves through a fixed schema table
// (Settings.Fields), so the walk never depends on Go field names:
//
//	func (s *WebSettings) Fields() []flatconfig.Field {
//	    return []flatconfig.Field{
//	        flatconfig.Bool("web.background", s.Background),
//	        flatconfig.Value("web.defaultEncoding", s.DefaultEncoding),
//	    }
//	}
//
// Encoding rules:
//   - bool leaves become "true" or "false"
//   - number leaves use fixed notation with at most two fractional digits
//   - ordered map leaves emit, per non-null pair, an append directive
//     under the key followed by "key[i]" = "k\nv"
//   - other leaves use their default string form
//   - nested settings recurse into the same destination
//
// Null leaves (nil pointers, nil maps, nil nested settings) are skipped.
package flatconfig
