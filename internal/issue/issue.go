// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	WingetNotFoundId Id = iota + 1
	CaptureFailedId
	InputNotReadableId
	ConfigLoadFailedId
	InvalidConfigValueId
	CacheUnavailableId
	NoPackagesFoundId
	InstallFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // lookup key
	mdMsg    MarkdownMsg // rendered with glamour
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown. stylePath is a glamour style name or
// path; the empty string selects glamour's default.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.docLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
		for _, link := range i.extLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	wingetNotFoundIssue = &Issue{
		id: WingetNotFoundId,
		mdMsg: `
# winget not found!

pkgtab could not start the Windows Package Manager.

## Things you can try:
- Install "App Installer" from the Microsoft Store, which ships winget
- Point pkgtab at a different executable:
~~~cue
winget: {
  command: "C:/Tools/winget.exe"
}
~~~

- Parse a saved capture instead of running winget:
~~~
$ winget list > list.txt
$ pkgtab list --input list.txt
~~~`,
		extLinks: []HttpLink{"https://learn.microsoft.com/windows/package-manager/winget/"},
	}

	captureFailedIssue = &Issue{
		id: CaptureFailedId,
		mdMsg: `
# Failed to capture winget output!

winget started but did not produce a table pkgtab could read.

## Common causes:
- The winget sources are being updated and the command timed out
- A source agreement prompt is waiting for input
- The output was cut short by the terminal

## Things you can try:
- Raise the timeout:
~~~cue
winget: {
  timeout: "5m"
}
~~~

- Run the command once by hand to accept any prompts:
~~~
$ winget list --accept-source-agreements
~~~`,
	}

	inputNotReadableIssue = &Issue{
		id: InputNotReadableId,
		mdMsg: `
# Input not readable!

The file passed with --input could not be read.

## Things you can try:
- Check the path and its permissions
- Use "-" to read from standard input:
~~~
$ winget search vscode | pkgtab search vscode --input -
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the pkgtab configuration file.

## Configuration file locations:
- Linux: ~/.config/pkgtab/config.cue
- macOS: ~/Library/Application Support/pkgtab/config.cue
- Windows: %APPDATA%\pkgtab\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ pkgtab config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~cue
winget: {
  command: "winget"
  timeout: "2m"
}
cache: {
  enabled:    true
  list_ttl:   "5s"
  search_ttl: "30m"
}
output: {
  format: "table"
}
~~~`,
	}

	invalidConfigValueIssue = &Issue{
		id: InvalidConfigValueId,
		mdMsg: `
# Invalid configuration value!

A setting has a value pkgtab does not understand.

## Valid values:
- **output.format**: table, json, yaml, toml
- **search.rank**: relevance, score
- **ui.color_scheme**: auto, dark, light
- **durations**: Go duration strings such as "5s", "30m" or "2m30s"`,
	}

	cacheUnavailableIssue = &Issue{
		id: CacheUnavailableId,
		mdMsg: `
# Result cache unavailable!

pkgtab could not open its result cache and ran without it.

## Things you can try:
- Check that the cache directory is writable
- Clear the cache:
~~~
$ pkgtab cache clear
~~~

- Disable caching:
~~~cue
cache: {
  enabled: false
}
~~~`,
	}

	noPackagesFoundIssue = &Issue{
		id: NoPackagesFoundId,
		mdMsg: `
# No packages found!

winget returned no rows that match the search.

## Things you can try:
- Use a shorter or more general term
- Separate several keywords with commas:
~~~
$ pkgtab best "vscode, visual studio code"
~~~`,
	}

	installFailedIssue = &Issue{
		id: InstallFailedId,
		mdMsg: `
# Install failed!

winget did not report a successful installation.

## Things you can try:
- Re-run with --verbose to see the full winget output
- Check that the package id is exact:
~~~
$ pkgtab search <name>
~~~`,
	}

	issues = map[Id]*Issue{
		wingetNotFoundIssue.Id():     wingetNotFoundIssue,
		captureFailedIssue.Id():      captureFailedIssue,
		inputNotReadableIssue.Id():   inputNotReadableIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		invalidConfigValueIssue.Id(): invalidConfigValueIssue,
		cacheUnavailableIssue.Id():   cacheUnavailableIssue,
		noPackagesFoundIssue.Id():    noPackagesFoundIssue,
		installFailedIssue.Id():      installFailedIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
