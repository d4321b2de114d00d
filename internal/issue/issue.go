// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a documented problem.
type Id int

const (
	ProjectNotFoundId Id = iota + 1
	ProjectInvalidId
	RepositoryUnavailableId
	CorruptRecordId
	PackageNotFoundId
	InvalidDeclarationId
	InvalidVersionId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation for this issue
	extLinks []HttpLink  // external links that might be useful for the user
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

// Render renders the issue as terminal markdown with the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	projectNotFoundIssue = &Issue{
		id: ProjectNotFoundId,
		mdMsg: `
# No project descriptor found!

pkgdep export reads the bundle's pom.xml to learn its coordinates, source
directory and resource directories.

## Things you can try:
- Run the command from the project directory, or point at it:
~~~
$ pkgdep export --project path/to/bundle
~~~
- Check that the file is named exactly pom.xml`,
		extLinks: []HttpLink{"https://maven.apache.org/pom.html"},
	}

	projectInvalidIssue = &Issue{
		id: ProjectInvalidId,
		mdMsg: `
# The project descriptor could not be used!

The pom.xml was found but its XML is malformed, or it lacks a groupId,
artifactId or version (directly or through its parent).

## Things you can try:
- Validate the file with your build tool
- Make sure the version is numeric, e.g. 1.0.1 or 1.0.1-SNAPSHOT`,
		extLinks: []HttpLink{"https://maven.apache.org/pom.html#Maven_Coordinates"},
	}

	repositoryUnavailableIssue = &Issue{
		id: RepositoryUnavailableId,
		mdMsg: `
# The package repository is not accessible!

pkgdep keeps one record file per package under its repository root
(~/.pkgdep/repository by default).

## Things you can try:
- Check that the directory exists and is writable
- Point pkgdep at another root:
~~~
$ pkgdep --repository /path/to/repository list
~~~
- Or set it in your config file:
~~~cue
repository: root: "/path/to/repository"
~~~`,
	}

	corruptRecordIssue = &Issue{
		id: CorruptRecordId,
		mdMsg: `
# A package record is corrupt!

Record files hold lines of the form:
~~~
1.0.1 = com.example:example-bundle:1.0.1, com.example:other:1.0.1
~~~

## Things you can try:
- Inspect the file named after the package in the repository root
- Run 'pkgdep remove <package>' and export the providing projects again`,
	}

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not found!

The repository has no record for this package.

## Things you can try:
- List the known packages:
~~~
$ pkgdep list
~~~
- Export the project that provides it:
~~~
$ pkgdep export --project path/to/bundle
~~~`,
	}

	invalidDeclarationIssue = &Issue{
		id: InvalidDeclarationId,
		mdMsg: `
# An export declaration could not be used!

Declarations are comma separated package names with optional attributes:
~~~
com.example.api;version="1.5", com.example.*, !com.example.impl
~~~

## Things you can try:
- Check the version attribute of the declaration reported above
- Preview what a declaration expands to:
~~~
$ pkgdep parse 'com.example.*' --source-root src/main/java --artifact g:n:1.0
~~~`,
	}

	invalidVersionIssue = &Issue{
		id: InvalidVersionId,
		mdMsg: `
# Invalid version!

Versions have one to four numeric fields and an optional qualifier:
~~~
1   1.2   1.2.3   1.2.3.4   1.2.3-SNAPSHOT
~~~

A qualifier cannot contain whitespace and cannot follow a build field.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the CUE syntax of your config file
- Show the effective configuration:
~~~
$ pkgdep config show
~~~
- Recreate a default file:
~~~
$ pkgdep config init
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to read or write a file pkgdep needs.

## Things you can try:
- Check the permissions of the repository root and the project directory
- Use a repository root you own`,
	}

	issues = map[Id]*Issue{
		projectNotFoundIssue.Id():       projectNotFoundIssue,
		projectInvalidIssue.Id():        projectInvalidIssue,
		repositoryUnavailableIssue.Id(): repositoryUnavailableIssue,
		corruptRecordIssue.Id():         corruptRecordIssue,
		packageNotFoundIssue.Id():       packageNotFoundIssue,
		invalidDeclarationIssue.Id():    invalidDeclarationIssue,
		invalidVersionIssue.Id():        invalidVersionIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

// Values returns every known issue ordered by id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
