// Package commit implements the commit object: author/committer identity,
// parent linkage, and the tree snapshot a commit points at.
package commit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/scmkit/sourcecontrol/pkg/objects"
)

// GitTime wraps a timestamp the way commit headers store it: a Unix seconds
// value plus a numeric UTC offset, rather than a single flat instant.
type GitTime struct {
	seconds int64
	offset  *time.Location
	offsetStr string
}

// NewGitTime builds a GitTime from a wall-clock time, preserving its offset.
func NewGitTime(t time.Time) GitTime {
	return GitTime{seconds: t.Unix(), offset: t.Location(), offsetStr: t.Format("-0700")}
}

// Time returns the GitTime as a standard time.Time in its original offset.
func (g GitTime) Time() time.Time {
	loc := g.offset
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(g.seconds, 0).In(loc)
}

// FormatForGit renders the timestamp as "<unix-seconds> <+zzzz>".
func (g GitTime) FormatForGit() string {
	offset := g.offsetStr
	if offset == "" {
		offset = "+0000"
	}
	return fmt.Sprintf("%d %s", g.seconds, offset)
}

// parseGitTime parses the "<unix-seconds> <+zzzz>" form back into a GitTime.
func parseGitTime(s string) (GitTime, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return GitTime{}, fmt.Errorf("malformed timestamp %q", s)
	}

	seconds, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return GitTime{}, fmt.Errorf("malformed timestamp seconds %q: %w", fields[0], err)
	}

	loc, err := parseOffset(fields[1])
	if err != nil {
		return GitTime{}, err
	}

	return GitTime{seconds: seconds, offset: loc, offsetStr: fields[1]}, nil
}

func parseOffset(s string) (*time.Location, error) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return nil, fmt.Errorf("malformed timezone offset %q", s)
	}
	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return nil, fmt.Errorf("malformed timezone offset %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(s[3:5])
	if err != nil {
		return nil, fmt.Errorf("malformed timezone offset %q: %w", s, err)
	}
	total := hours*3600 + minutes*60
	if s[0] == '-' {
		total = -total
	}
	return time.FixedZone(s, total), nil
}

// CommitPerson identifies an author or committer at a point in time.
type CommitPerson struct {
	Name  string
	Email string
	When  GitTime
}

// NewCommitPerson builds a CommitPerson, validating its identity fields.
func NewCommitPerson(name, email string, when time.Time) (*CommitPerson, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("person name is required")
	}
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("person email is required")
	}
	return &CommitPerson{Name: name, Email: email, When: NewGitTime(when)}, nil
}

// FormatForGit renders "Name <email> seconds +zzzz", the form used in both
// commit and tag object headers.
func (p *CommitPerson) FormatForGit() string {
	return fmt.Sprintf("%s <%s> %s", p.Name, p.Email, p.When.FormatForGit())
}

// Equal compares two persons field by field.
func (p *CommitPerson) Equal(other *CommitPerson) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Name == other.Name && p.Email == other.Email && p.When.seconds == other.When.seconds
}

// ParseCommitPerson parses a "Name <email> seconds +zzzz" header value.
func ParseCommitPerson(data string) (*CommitPerson, error) {
	open := strings.LastIndex(data, "<")
	close := strings.LastIndex(data, ">")
	if open < 0 || close < 0 || close < open {
		return nil, fmt.Errorf("malformed person line %q", data)
	}

	name := strings.TrimSpace(data[:open])
	email := data[open+1 : close]
	rest := strings.TrimSpace(data[close+1:])

	when, err := parseGitTime(rest)
	if err != nil {
		return nil, fmt.Errorf("malformed person timestamp: %w", err)
	}

	return &CommitPerson{Name: name, Email: email, When: when}, nil
}

// Commit represents a single snapshot in history.
type Commit struct {
	TreeSHA    objects.ObjectHash
	ParentSHAs []objects.ObjectHash
	Author     *CommitPerson
	Committer  *CommitPerson
	Message    string

	hash *objects.ObjectHash
}

// Type returns the object type.
func (c *Commit) Type() objects.ObjectType { return objects.CommitType }

// Content renders the commit body (without the object header) in the same
// layout tag.Tag.Content uses for its own headers.
func (c *Commit) Content() (objects.ObjectContent, error) {
	if c.Author == nil {
		return nil, fmt.Errorf("author is required")
	}

	var buf strings.Builder
	buf.WriteString("tree ")
	buf.WriteString(c.TreeSHA.String())
	buf.WriteString("\n")

	for _, parent := range c.ParentSHAs {
		buf.WriteString("parent ")
		buf.WriteString(parent.String())
		buf.WriteString("\n")
	}

	buf.WriteString("author ")
	buf.WriteString(c.Author.FormatForGit())
	buf.WriteString("\n")

	committer := c.Committer
	if committer == nil {
		committer = c.Author
	}
	buf.WriteString("committer ")
	buf.WriteString(committer.FormatForGit())
	buf.WriteString("\n\n")
	buf.WriteString(c.Message)

	return objects.ObjectContent(buf.String()), nil
}

// Hash returns (and caches) the commit's object hash.
func (c *Commit) Hash() (objects.ObjectHash, error) {
	if c.hash != nil {
		return *c.hash, nil
	}
	content, err := c.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get content: %w", err)
	}
	hash := objects.ComputeObjectHash(objects.CommitType, content)
	c.hash = &hash
	return hash, nil
}

// Size returns the content length in bytes.
func (c *Commit) Size() (objects.ObjectSize, error) {
	content, err := c.Content()
	if err != nil {
		return 0, err
	}
	return content.Size(), nil
}

// Serialize writes the commit in the store's on-disk format.
func (c *Commit) Serialize(w io.Writer) error {
	content, err := c.Content()
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}
	serialized := objects.NewSerializedObject(objects.CommitType, content)
	if _, err := w.Write(serialized.Bytes()); err != nil {
		return fmt.Errorf("failed to write commit: %w", err)
	}
	return nil
}

// String returns a short human-readable summary.
func (c *Commit) String() string {
	hash, err := c.Hash()
	if err != nil {
		return fmt.Sprintf("Commit{error: %v}", err)
	}
	return fmt.Sprintf("Commit{hash: %s, message: %.50s}", hash.Short(), c.Message)
}

// IsMerge reports whether the commit has more than one parent.
func (c *Commit) IsMerge() bool { return len(c.ParentSHAs) > 1 }

// IsRoot reports whether the commit has no parents.
func (c *Commit) IsRoot() bool { return len(c.ParentSHAs) == 0 }

// ParseCommit parses a commit object from its serialized (with header) form.
func ParseCommit(data []byte) (*Commit, error) {
	content, err := objects.ParseSerializedObject(data, objects.CommitType)
	if err != nil {
		return nil, err
	}

	c := &Commit{}
	lines := strings.Split(content.String(), "\n")

	messageStart := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			messageStart = i + 1
			break
		}
		if err := parseCommitLine(c, line); err != nil {
			return nil, err
		}
	}

	if c.TreeSHA == "" {
		return nil, fmt.Errorf("commit is missing a tree entry")
	}
	if c.Author == nil {
		return nil, fmt.Errorf("commit is missing an author entry")
	}

	if messageStart != -1 && messageStart < len(lines) {
		c.Message = strings.Join(lines[messageStart:], "\n")
	}

	hash := objects.NewObjectHash(objects.SerializedObject(data))
	c.hash = &hash
	return c, nil
}

func parseCommitLine(c *Commit, line string) error {
	switch {
	case strings.HasPrefix(line, "tree "):
		sha, err := objects.NewObjectHashFromString(strings.TrimPrefix(line, "tree "))
		if err != nil {
			return fmt.Errorf("invalid tree SHA: %w", err)
		}
		c.TreeSHA = sha

	case strings.HasPrefix(line, "parent "):
		sha, err := objects.NewObjectHashFromString(strings.TrimPrefix(line, "parent "))
		if err != nil {
			return fmt.Errorf("invalid parent SHA: %w", err)
		}
		c.ParentSHAs = append(c.ParentSHAs, sha)

	case strings.HasPrefix(line, "author "):
		person, err := ParseCommitPerson(strings.TrimPrefix(line, "author "))
		if err != nil {
			return fmt.Errorf("invalid author: %w", err)
		}
		c.Author = person

	case strings.HasPrefix(line, "committer "):
		person, err := ParseCommitPerson(strings.TrimPrefix(line, "committer "))
		if err != nil {
			return fmt.Errorf("invalid committer: %w", err)
		}
		c.Committer = person

	default:
		return fmt.Errorf("unknown commit header line: %s", line)
	}
	return nil
}

// Builder provides a fluent interface for constructing commits, mirroring
// objects/tag's TagBuilder.
type Builder struct {
	commit *Commit
	errs   []error
}

// NewCommitBuilder creates a new Builder.
func NewCommitBuilder() *Builder {
	return &Builder{commit: &Commit{}}
}

func (b *Builder) Tree(sha objects.ObjectHash) *Builder {
	b.commit.TreeSHA = sha
	return b
}

func (b *Builder) Parents(shas ...objects.ObjectHash) *Builder {
	b.commit.ParentSHAs = append(b.commit.ParentSHAs, shas...)
	return b
}

func (b *Builder) Author(p *CommitPerson) *Builder {
	if p == nil {
		b.errs = append(b.errs, fmt.Errorf("author cannot be nil"))
	}
	b.commit.Author = p
	return b
}

func (b *Builder) Committer(p *CommitPerson) *Builder {
	b.commit.Committer = p
	return b
}

func (b *Builder) Message(msg string) *Builder {
	b.commit.Message = msg
	return b
}

// Build finalizes the commit, returning any validation errors collected
// along the way.
func (b *Builder) Build() (*Commit, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("commit builder errors: %v", b.errs)
	}
	if b.commit.TreeSHA == "" {
		return nil, fmt.Errorf("tree is required")
	}
	if b.commit.Author == nil {
		return nil, fmt.Errorf("author is required")
	}
	return b.commit, nil
}
