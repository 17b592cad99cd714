package markup

import (
	"regexp"
	"strings"

	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/textfmt"
)

type palette struct {
	primary, secondary, accent string
	background, surface, text  string
	card, border, band         bool
}

var palettes = map[render.Template]palette{
	render.TemplateProfessional: {
		primary: "#1f3a5f", secondary: "#4a6fa5", accent: "#c9a227",
		background: "#f4f6f9", surface: "#ffffff", text: "#1f2933",
		card: true, border: true,
	},
	render.TemplateMinimal: {
		primary: "#222222", secondary: "#555555", accent: "#888888",
		background: "#ffffff", surface: "#ffffff", text: "#222222",
	},
	render.TemplateBranded: {
		primary: "#0b5d3b", secondary: "#1c8c5e", accent: "#d4af37",
		background: "#f3f7f4", surface: "#ffffff", text: "#14261d",
		card: true, band: true,
	},
}

var cssColorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{3,20}|rgba?\(\s*[0-9.,%\s]+\))$`)

// cssColor returns c when it is a safe CSS color value, otherwise fallback.
func cssColor(c, fallback string) string {
	c = strings.TrimSpace(c)
	if c != "" && cssColorPattern.MatchString(c) {
		return c
	}
	return fallback
}

// Stylesheet returns the inline CSS for a profile. Templates differ only in
// colors, card versus flat layout, and borders.
func Stylesheet(profile render.Profile) string {
	p, ok := palettes[profile.Template]
	if !ok {
		p = palettes[render.TemplateProfessional]
	}
	if c := profile.Colors; c != nil {
		p.primary = cssColor(c.Primary, p.primary)
		p.secondary = cssColor(c.Secondary, p.secondary)
		p.accent = cssColor(c.Accent, p.accent)
	}

	var sb strings.Builder
	sb.WriteString(":root{")
	sb.WriteString("--color-primary:" + p.primary + ";")
	sb.WriteString("--color-secondary:" + p.secondary + ";")
	sb.WriteString("--color-accent:" + p.accent + ";")
	sb.WriteString("--color-background:" + p.background + ";")
	sb.WriteString("--color-surface:" + p.surface + ";")
	sb.WriteString("--color-text:" + p.text + ";")
	sb.WriteString("}\n")
	sb.WriteString(baseCSS)
	sb.WriteString(textfmt.CSS())

	if p.card {
		sb.WriteString(".pub-section{background:var(--color-surface);border-radius:12px;padding:24px;margin:0 0 20px;box-shadow:0 1px 3px rgba(0,0,0,.08)}\n")
	} else {
		sb.WriteString(".pub-section{padding:16px 0;margin:0;border-bottom:1px solid #eeeeee}\n")
	}
	if p.border {
		sb.WriteString(".pub-section{border:1px solid #dde3ea}\n")
	} else {
		sb.WriteString(".dept-logo{border:none}\n")
	}
	if p.band {
		sb.WriteString(".pub-section{border-top:4px solid var(--color-primary)}\n")
		sb.WriteString(".pub-header{background:var(--color-primary);color:#ffffff;padding:28px 24px;border-radius:12px}\n")
		sb.WriteString(".pub-header .pub-breadcrumb,.pub-header .pub-date{color:rgba(255,255,255,.85)}\n")
	}
	return sb.String()
}

const baseCSS = `*{box-sizing:border-box}
body{margin:0;padding:0;background:var(--color-background);color:var(--color-text);font-family:"Inter","Segoe UI",Roboto,Helvetica,Arial,sans-serif;font-size:15px;line-height:1.6}
.pub-document{max-width:760px;margin:0 auto;padding:32px 24px}
.pub-header{text-align:center;margin-bottom:28px}
.header-separator{height:4px;width:96px;margin:0 auto 20px;border-radius:2px;background:linear-gradient(90deg,var(--color-primary),var(--color-accent))}
.location-logo{display:block;max-height:64px;margin:0 auto 12px}
.pub-title{margin:0 0 6px;font-size:28px;color:var(--color-primary)}
.pub-breadcrumb{margin:0;color:var(--color-secondary);font-size:14px}
.pub-date{margin:4px 0 0;color:#6b7280;font-size:12px}
.empty-state{padding:48px 16px;text-align:center;color:#6b7280;font-style:italic}
.section-header{display:flex;align-items:center;gap:14px;margin-bottom:14px}
.dept-logo{flex:0 0 48px;width:48px;height:48px;border-radius:50%;overflow:hidden;display:flex;align-items:center;justify-content:center;border:2px solid var(--color-accent);background:#ffffff}
.dept-logo img{width:100%;height:100%;object-fit:cover}
.dept-logo-glyph{font-size:26px}
.dept-logo-placeholder{font-weight:700;color:#ffffff;background:var(--color-secondary)}
.section-title{margin:0;font-size:20px;color:var(--color-primary)}
.section-subtitle{margin:2px 0 0;font-size:14px;font-weight:600;color:var(--color-secondary)}
.section-description{margin:4px 0 0;font-size:13px;color:#6b7280}
.block{margin:0 0 14px}
.block-text p{margin:0 0 8px}
.block-text ul,.block-text ol{margin:0 0 8px;padding-inline-start:22px}
.block-image{margin:0 0 14px;text-align:center}
.block-image img{max-width:100%;height:auto;border-radius:8px}
.block-image figcaption{margin-top:6px;font-size:12px;color:#6b7280}
.image-placeholder{padding:32px;border:2px dashed #c3cad5;border-radius:8px;color:#9aa3af;text-align:center}
.block-menu .menu-header{margin:0 0 8px;font-size:16px;color:var(--color-secondary)}
.menu-items{list-style:none;margin:0;padding:0}
.menu-item{padding:8px 0;border-bottom:1px dashed #e5e7eb}
.menu-item-name{display:block;font-weight:600}
.menu-item-nutrition,.menu-item-allergens{display:block;font-size:12px;color:#6b7280}
.menu-empty{color:#9aa3af;font-style:italic}
.pub-footer{margin-top:36px;text-align:center;font-size:12px;color:#6b7280}
.footer-separator{height:1px;background:#e5e7eb;margin-bottom:16px}
.footer-title{font-weight:600;color:var(--color-primary);margin:0 0 4px}
.footer-text,.footer-note{margin:0 0 4px}
`
