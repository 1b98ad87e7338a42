package render

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

	nsA   = `http://schemas.openxmlformats.org/drawingml/2006/main`
	nsR   = `http://schemas.openxmlformats.org/officeDocument/2006/relationships`
	nsP   = `http://schemas.openxmlformats.org/presentationml/2006/main`
	nsRel = `http://schemas.openxmlformats.org/package/2006/relationships`

	relOfficeDoc = nsR + `/officeDocument`
	relCore      = `http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties`
	relApp       = nsR + `/extended-properties`
	relMaster    = nsR + `/slideMaster`
	relLayout    = nsR + `/slideLayout`
	relTheme     = nsR + `/theme`
	relSlide     = nsR + `/slide`
	relLink      = nsR + `/hyperlink`

	ctPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctMaster       = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctLayout       = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctCore         = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp          = "application/vnd.openxmlformats-officedocument.extended-properties+xml"

	// 空的组合形状头，每个 spTree 都需要。
	groupHeader = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`
)

type part struct {
	name string
	body string
}

// WritePPTX serializes d as an OOXML presentation package.
func WritePPTX(w io.Writer, d *Deck) error {
	parts := []part{
		{"[Content_Types].xml", contentTypesXML(len(d.Slides))},
		{"_rels/.rels", relsXML([]rel{
			{Type: relOfficeDoc, Target: "ppt/presentation.xml"},
			{Type: relCore, Target: "docProps/core.xml"},
			{Type: relApp, Target: "docProps/app.xml"},
		})},
		{"docProps/core.xml", coreXML(d)},
		{"docProps/app.xml", appXML(len(d.Slides))},
		{"ppt/presentation.xml", presentationXML(d)},
		{"ppt/_rels/presentation.xml.rels", presentationRels(len(d.Slides))},
		{"ppt/slideMasters/slideMaster1.xml", masterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", relsXML([]rel{
			{Type: relLayout, Target: "../slideLayouts/slideLayout1.xml"},
			{Type: relTheme, Target: "../theme/theme1.xml"},
		})},
		{"ppt/slideLayouts/slideLayout1.xml", layoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", relsXML([]rel{
			{Type: relMaster, Target: "../slideMasters/slideMaster1.xml"},
		})},
		{"ppt/theme/theme1.xml", themeXML(d.Theme)},
	}
	for i, s := range d.Slides {
		body, links := slideXML(d.Theme, s)
		rels := []rel{{Type: relLayout, Target: "../slideLayouts/slideLayout1.xml"}}
		for _, l := range links {
			rels = append(rels, rel{Type: relLink, Target: l, External: true})
		}
		parts = append(parts,
			part{fmt.Sprintf("ppt/slides/slide%d.xml", i+1), body},
			part{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), relsXML(rels)},
		)
	}

	zw := zip.NewWriter(w)
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := io.WriteString(f, p.body); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

type rel struct {
	Type     string
	Target   string
	External bool
}

// relsXML numbers relationships rId1..rIdN in order.
func relsXML(rels []rel) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Relationships xmlns="%s">`, nsRel)
	for i, r := range rels {
		mode := ""
		if r.External {
			mode = ` TargetMode="External"`
		}
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="%s"%s/>`, i+1, r.Type, esc(r.Target), mode)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func contentTypesXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	override := func(name, ct string) {
		fmt.Fprintf(&b, `<Override PartName="%s" ContentType="%s"/>`, name, ct)
	}
	override("/ppt/presentation.xml", ctPresentation)
	override("/ppt/slideMasters/slideMaster1.xml", ctMaster)
	override("/ppt/slideLayouts/slideLayout1.xml", ctLayout)
	override("/ppt/theme/theme1.xml", ctTheme)
	for i := 1; i <= slides; i++ {
		override(fmt.Sprintf("/ppt/slides/slide%d.xml", i), ctSlide)
	}
	override("/docProps/core.xml", ctCore)
	override("/docProps/app.xml", ctApp)
	b.WriteString(`</Types>`)
	return b.String()
}

func coreXML(d *Deck) string {
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title>` + esc(d.Title) + `</dc:title><dc:creator>` + esc(d.Author) + `</dc:creator></cp:coreProperties>`
}

func appXML(slides int) string {
	return xmlHeader + fmt.Sprintf(
		`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"><Application>slidegen</Application><Slides>%d</Slides></Properties>`,
		slides)
}

// presentation.xml.rels: rId1 master, rId2 theme, rId3.. slides.
func presentationRels(slides int) string {
	rels := []rel{
		{Type: relMaster, Target: "slideMasters/slideMaster1.xml"},
		{Type: relTheme, Target: "theme/theme1.xml"},
	}
	for i := 1; i <= slides; i++ {
		rels = append(rels, rel{Type: relSlide, Target: fmt.Sprintf("slides/slide%d.xml", i)})
	}
	return relsXML(rels)
}

func presentationXML(d *Deck) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" saveSubsetFonts="1">`, nsA, nsR, nsP)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := range d.Slides {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+3)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="6858000" cy="9144000"/>`, d.Width, d.Height)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

var masterXML = xmlHeader +
	`<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
	`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>` + groupHeader + `</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`</p:sldMaster>`

var layoutXML = xmlHeader +
	`<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" type="blank" preserve="1">` +
	`<p:cSld name="Blank"><p:spTree>` + groupHeader + `</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`

func themeXML(th Theme) string {
	clr := func(tag string, c Color) string {
		return fmt.Sprintf(`<a:%s><a:srgbClr val="%s"/></a:%s>`, tag, c.Hex(), tag)
	}
	font := func(tag, face string) string {
		return fmt.Sprintf(`<a:%s><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:%s>`, tag, esc(face), tag)
	}
	solid := `<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`
	line := `<a:ln w="9525"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>`
	effect := `<a:effectStyle><a:effectLst/></a:effectStyle>`

	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<a:theme xmlns:a="%s" name="%s"><a:themeElements>`, nsA, esc(th.Name))
	fmt.Fprintf(&b, `<a:clrScheme name="%s">`, esc(th.Name))
	b.WriteString(clr("dk1", th.Primary))
	b.WriteString(clr("lt1", th.Background))
	b.WriteString(clr("dk2", th.Accent))
	b.WriteString(clr("lt2", th.Background))
	b.WriteString(clr("accent1", th.Secondary))
	b.WriteString(clr("accent2", th.Accent))
	b.WriteString(clr("accent3", th.Primary))
	b.WriteString(clr("accent4", th.Secondary))
	b.WriteString(clr("accent5", th.Accent))
	b.WriteString(clr("accent6", th.Primary))
	b.WriteString(clr("hlink", th.Accent))
	b.WriteString(clr("folHlink", th.Accent))
	b.WriteString(`</a:clrScheme>`)
	fmt.Fprintf(&b, `<a:fontScheme name="%s">%s%s</a:fontScheme>`, esc(th.Name), font("majorFont", th.TitleFont), font("minorFont", th.BodyFont))
	b.WriteString(`<a:fmtScheme name="Office">`)
	b.WriteString(`<a:fillStyleLst>` + strings.Repeat(solid, 3) + `</a:fillStyleLst>`)
	b.WriteString(`<a:lnStyleLst>` + strings.Repeat(line, 3) + `</a:lnStyleLst>`)
	b.WriteString(`<a:effectStyleLst>` + strings.Repeat(effect, 3) + `</a:effectStyleLst>`)
	b.WriteString(`<a:bgFillStyleLst>` + strings.Repeat(solid, 3) + `</a:bgFillStyleLst>`)
	b.WriteString(`</a:fmtScheme></a:themeElements></a:theme>`)
	return b.String()
}

// slideXML returns the slide part and the hyperlink targets it references,
// in the order their relationship ids (rId2, rId3, ...) were assigned.
func slideXML(th Theme, s Slide) (string, []string) {
	var links []string
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsA, nsR, nsP)
	fmt.Fprintf(&b, `<p:cSld><p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, th.Background.Hex())
	b.WriteString(`<p:spTree>` + groupHeader)
	for i, sh := range s.Shapes {
		writeShape(&b, i+2, sh, &links)
	}
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String(), links
}

func writeShape(b *strings.Builder, id int, sh Shape, links *[]string) {
	name, geom, cNv := fmt.Sprintf("TextBox %d", id-1), "rect", `<p:cNvSpPr txBox="1"/>`
	if sh.Kind == RoundRect {
		name, geom, cNv = fmt.Sprintf("Rounded Rectangle %d", id-1), "roundRect", `<p:cNvSpPr/>`
	}
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/>%s<p:nvPr/></p:nvSpPr>`, id, name, cNv)
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="%s"><a:avLst/></a:prstGeom>`,
		sh.X, sh.Y, sh.W, sh.H, geom)
	if sh.Fill != nil {
		fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:ln><a:noFill/></a:ln>`, sh.Fill.Hex())
	} else {
		b.WriteString(`<a:noFill/>`)
	}
	b.WriteString(`</p:spPr><p:txBody>`)

	wrap := "none"
	if sh.WordWrap || sh.Kind == RoundRect {
		wrap = "square"
	}
	anchor := "t"
	if sh.MidAnchor {
		anchor = "ctr"
	}
	fmt.Fprintf(b, `<a:bodyPr wrap="%s" rtlCol="0" anchor="%s">`, wrap, anchor)
	if sh.Kind == TextBox {
		b.WriteString(`<a:spAutoFit/>`)
	}
	b.WriteString(`</a:bodyPr><a:lstStyle/>`)

	if len(sh.Paragraphs) == 0 {
		b.WriteString(`<a:p/>`)
	}
	for _, p := range sh.Paragraphs {
		writeParagraph(b, p, links)
	}
	b.WriteString(`</p:txBody></p:sp>`)
}

func writeParagraph(b *strings.Builder, p Paragraph, links *[]string) {
	b.WriteString(`<a:p>`)
	attrs := ""
	if p.Align != "" {
		attrs += fmt.Sprintf(` algn="%s"`, p.Align)
	}
	if p.Level > 0 {
		attrs += fmt.Sprintf(` lvl="%d"`, p.Level)
	}
	var inner strings.Builder
	if p.LineSpacing > 0 {
		fmt.Fprintf(&inner, `<a:lnSpc><a:spcPct val="%d"/></a:lnSpc>`, int(p.LineSpacing*100000+0.5))
	}
	if p.SpaceAfterPt > 0 {
		fmt.Fprintf(&inner, `<a:spcAft><a:spcPts val="%d"/></a:spcAft>`, int(p.SpaceAfterPt*100+0.5))
	}
	if attrs != "" || inner.Len() > 0 {
		fmt.Fprintf(b, `<a:pPr%s>%s</a:pPr>`, attrs, inner.String())
	}
	for _, r := range p.Runs {
		writeRun(b, r, links)
	}
	b.WriteString(`</a:p>`)
}

func writeRun(b *strings.Builder, r TextRun, links *[]string) {
	fmt.Fprintf(b, `<a:r><a:rPr lang="en-US" sz="%d"`, int(r.SizePt*100+0.5))
	if r.Bold {
		b.WriteString(` b="1"`)
	}
	if r.Underline {
		b.WriteString(` u="sng"`)
	}
	b.WriteString(` dirty="0">`)
	fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, r.Color.Hex())
	if r.Font != "" {
		fmt.Fprintf(b, `<a:latin typeface="%s"/>`, esc(r.Font))
	}
	if r.Link != "" {
		*links = append(*links, r.Link)
		// rId1 是版式关系，超链接从 rId2 开始。
		fmt.Fprintf(b, `<a:hlinkClick r:id="rId%d"/>`, len(*links)+1)
	}
	fmt.Fprintf(b, `</a:rPr><a:t>%s</a:t></a:r>`, esc(r.Text))
}
