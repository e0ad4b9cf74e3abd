package word

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Placeholders replaced in the template document
const (
	PlaceholderDate     = "{{Date}}"
	PlaceholderScope    = "{{Scope}}"
	PlaceholderProducts = "{{TotalProducts}}"
	PlaceholderContent  = "{{Content}}"
)

// templateParts are the minimal OOXML parts docx needs to open a document
var templateParts = []struct {
	name string
	body string
}{
	{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`},
	{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`},
	{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`},
	{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:rPr><w:b/><w:sz w:val="36"/></w:rPr><w:t>PDP Findings Report</w:t></w:r></w:p>
<w:p><w:r><w:t>Date: {{Date}}</w:t></w:r></w:p>
<w:p><w:r><w:t>Scope: {{Scope}}</w:t></w:r></w:p>
<w:p><w:r><w:t>Products Checked: {{TotalProducts}}</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">{{Content}}</w:t></w:r></w:p>
</w:body>
</w:document>`},
}

// Template returns the built-in report template as .docx bytes
func Template() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, part := range templateParts {
		pw, err := w.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to template: %w", part.name, err)
		}
		if _, err := pw.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("failed to write %s to template: %w", part.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish template: %w", err)
	}
	return buf.Bytes(), nil
}
