package mcpserver

// RedirectFormatContract describes the persisted redirect document format
// that docs maintainers (and LLM consumers) must follow when retiring pages.
const RedirectFormatContract = `# Raido Redirect Document Contract

Redirects are persisted as a single flat JSON object mapping a retired page
path to its replacement.

## Structure

` + "```" + `json
{
  "sysadmin/install.html": "../setup/install.html",
  "tutorials/quickstart": "getting-started/quickstart.html",
  "legacy/api": "https://api.example.com/docs"
}
` + "```" + `

## Rules

1. **Flat object only.** The top level must be a JSON object; nested objects,
   arrays, numbers, booleans, and null values are rejected.
2. **Keys are retired site-relative paths.** Never empty. A key without a
   file extension publishes as ` + "`" + `<key>.html` + "`" + `; a key ending in ` + "`" + `/` + "`" + `
   publishes as ` + "`" + `<key>index.html` + "`" + `.
3. **Values are the replacement location.** Either a path relative to the
   retired page (e.g. ` + "`" + `../setup/install.html` + "`" + `) or a full URL.
4. **One replacement per retired path.** If the document repeats a key, the
   last occurrence wins; do not rely on this.
5. **A retired path must not shadow a live page.** The build fails if a
   redirect key collides with an existing page.
6. Pages may also declare aliases in Markdown frontmatter via
   ` + "`" + `redirect_from` + "`" + ` (a string or list of retired paths). An alias that
   conflicts with the redirect document fails the build.
`
