// Package index reads repository descriptors into package lists and keeps the available and
// installed package sets used by the resolver.
package index

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
)

// packageElementName is the descriptor element holding one package.
const packageElementName = "package"

// xmlPackage mirrors one <package> element of a repository descriptor or a .pkgdesc file.
type xmlPackage struct {
	XMLName     xml.Name `xml:"package"`
	Name        string   `xml:"name"`
	File        string   `xml:"file"`
	Size        string   `xml:"size"`
	FileSize    *string  `xml:"filesize"`
	Version     string   `xml:"version"`
	Description string   `xml:"description"`
	Depends     string   `xml:"depends"`
	Arch        string   `xml:"arch"`
	Replaces    string   `xml:"replaces"`
}

// Parse reads every <package> element in data, at any nesting depth, and returns the records in
// document order. A record whose name and version were already seen is skipped. Concatenated
// documents are accepted. Malformed input yields an empty list.
func Parse(data []byte, source string) List {
	var out List
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out
		}
		if err != nil {
			logger.Debug("Discarding unparsable package descriptor", logger.Fields{"source": source, "error": err.Error()})
			return List{}
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != packageElementName {
			continue
		}
		var p xmlPackage
		if err := dec.DecodeElement(&p, &start); err != nil {
			logger.Debug("Discarding unparsable package descriptor", logger.Fields{"source": source, "error": err.Error()})
			return List{}
		}
		rec := p.record(source)
		if rec.Name == "" || out.IsPresentVersion(rec.Name, rec.Version) {
			continue
		}
		out = append(out, rec)
	}
}

func (p *xmlPackage) record(source string) *model.PackageRecord {
	installed := parseSize(p.Size)
	download := installed
	if p.FileSize != nil && strings.TrimSpace(*p.FileSize) != "" {
		download = parseSize(*p.FileSize)
	}
	return &model.PackageRecord{
		Name:           strings.TrimSpace(p.Name),
		Version:        strings.TrimSpace(p.Version),
		ArchiveFile:    strings.TrimSpace(p.File),
		InstalledSize:  installed,
		DownloadSize:   download,
		DependsExpr:    strings.TrimSpace(p.Depends),
		Arch:           strings.TrimSpace(p.Arch),
		Replaces:       strings.TrimSpace(p.Replaces),
		Description:    strings.TrimSpace(p.Description),
		SourceLocation: source,
	}
}

// parseSize turns a byte count into an int64. Placeholders such as "@SIZE@" and anything
// else that is not a non-negative integer count as zero.
func parseSize(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Marshal renders a record as a standalone <package> element, the format of a .pkgdesc file.
func Marshal(rec *model.PackageRecord) ([]byte, error) {
	fileSize := strconv.FormatInt(rec.DownloadSize, 10)
	p := xmlPackage{
		Name:        rec.Name,
		File:        rec.ArchiveFile,
		Size:        strconv.FormatInt(rec.InstalledSize, 10),
		FileSize:    &fileSize,
		Version:     rec.Version,
		Description: rec.Description,
		Depends:     rec.DependsExpr,
		Arch:        rec.Arch,
		Replaces:    rec.Replaces,
	}
	return xml.MarshalIndent(p, "", "  ")
}
