package admin

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/huyblog/blogservice/internal/bio"
	"github.com/huyblog/blogservice/internal/content"
	"github.com/huyblog/blogservice/internal/posts"
	"github.com/huyblog/blogservice/internal/sociallinks"
)

const excerptWidth = 60

// RenderPosts writes one line per post, in the given language.
func RenderPosts(w io.Writer, list []*posts.Post, lang content.Language) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTITLE\tCATEGORIES\tEXCERPT")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.ID.Hex(),
			p.Date,
			p.Title.In(lang),
			strings.Join(p.Categories, ", "),
			truncate(p.Excerpt.In(lang), excerptWidth),
		)
	}
	return tw.Flush()
}

func RenderSocialLinks(w io.Writer, list []*sociallinks.SocialLink) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLATFORM\tUSERNAME\tURL")
	for _, l := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID.Hex(), l.Platform, l.Username, l.URL)
	}
	return tw.Flush()
}

func RenderBio(w io.Writer, translations bio.Translations, lang content.Language) error {
	keys := make([]string, 0, len(translations))
	for k := range translations {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTEXT")
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, truncate(translations[k].In(lang), excerptWidth))
	}
	return tw.Flush()
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// PromptConfirmer asks on out and reads the answer from in. Only y and yes confirm.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (c *PromptConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	answer, err := c.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
