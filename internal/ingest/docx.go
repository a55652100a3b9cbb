package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"strings"

	"rcman/internal/domain"
)

func (p *Pipeline) analyzeDOCX(fileName string, data []byte) (*Result, error) {
	text, err := extractDOCXText(data)
	if err != nil {
		return nil, err
	}

	analysis := rawTextAnalysis(fileName, domain.FileKindDOCX, text)
	log.Printf("ingest.Pipeline: extracted %d chars of text from %s", len(analysis.ExtractedText), fileName)
	return &Result{Analysis: analysis}, nil
}

// extractDOCXText pulls paragraph text out of the main document part of a
// docx archive. Paragraph boundaries become blank lines, mirroring how the
// text reads in the source document.
func extractDOCXText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: missing word/document.xml", domain.ErrUnreadableFile)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	defer rc.Close()

	var (
		text      strings.Builder
		decoder   = xml.NewDecoder(rc)
		inRunText bool
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRunText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRunText = false
			case "p":
				text.WriteString("\n\n")
			}
		case xml.CharData:
			if inRunText {
				text.Write(t)
			}
		}
	}
	return text.String(), nil
}
