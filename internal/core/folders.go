package core

// FolderBuilder turns resource folder paths into a deduplicated folder tree
// anchored at an import root.
//
// Folders are keyed by full path, never by leaf name: "a/x" and "b/x" are two
// records. Emission order is the order of first discovery. A builder belongs
// to one import session and is not safe for concurrent use.
type FolderBuilder struct {
	root    string
	flatten bool

	rootBroken bool

	emitted map[string]struct{}
	broken  map[string]struct{}
	folders []ExternalFolder
	errors  []FolderError
}

// Placement is where a resource will live and the folders that must be
// emitted for it. It is computed by Resolve and applied by Commit.
type Placement struct {
	Path    string
	pending []ExternalFolder
}

// NewFolderBuilder creates a builder rooted at reference. The root folder is
// emitted immediately. With flatten set, every resource is placed at the root.
// An invalid reference is reported once and resources are placed at "".
func NewFolderBuilder(reference string, flatten bool) *FolderBuilder {
	b := &FolderBuilder{
		root:    reference,
		flatten: flatten,
		emitted: make(map[string]struct{}),
		broken:  make(map[string]struct{}),
	}

	rootFolder := ExternalFolder{Name: reference}
	if err := rootFolder.Validate(); err != nil {
		b.markBroken(reference, err)
		b.root = ""
		b.rootBroken = true
	} else {
		b.emit(rootFolder)
	}
	return b
}

// Root returns the path resources are anchored under.
func (b *FolderBuilder) Root() string {
	return b.root
}

// Place registers a resource folder path and returns the path the resource
// should carry. It is Resolve followed by Commit.
func (b *FolderBuilder) Place(path string) string {
	p := b.Resolve(path)
	b.Commit(p)
	return p.Path
}

// Resolve computes where a resource with the given folder path goes without
// emitting anything. Every unseen prefix of path is pending until Commit.
// When a prefix is invalid it is reported and the resource goes to the root.
func (b *FolderBuilder) Resolve(path string) Placement {
	segments := SplitPath(path)
	if b.flatten || b.rootBroken || len(segments) == 0 {
		return Placement{Path: b.root}
	}

	var pending []ExternalFolder
	parent := b.root
	for _, name := range segments {
		full := JoinPath(parent, name)
		if _, bad := b.broken[full]; bad {
			return Placement{Path: b.root}
		}
		if _, seen := b.emitted[full]; !seen {
			folder := ExternalFolder{Name: name, FolderParentPath: parent}
			if err := folder.Validate(); err != nil {
				b.markBroken(full, err)
				return Placement{Path: b.root}
			}
			pending = append(pending, folder)
		}
		parent = full
	}
	return Placement{Path: parent, pending: pending}
}

// Commit emits the folders a placement still needs. Call it only for
// resources that are kept.
func (b *FolderBuilder) Commit(p Placement) {
	for _, f := range p.pending {
		if _, seen := b.emitted[f.Path()]; !seen {
			b.emit(f)
		}
	}
}

// Folders returns the emitted folder records in discovery order.
func (b *FolderBuilder) Folders() []ExternalFolder {
	out := make([]ExternalFolder, len(b.folders))
	copy(out, b.folders)
	return out
}

// Errors returns one FolderError per rejected folder path.
func (b *FolderBuilder) Errors() []FolderError {
	out := make([]FolderError, len(b.errors))
	copy(out, b.errors)
	return out
}

func (b *FolderBuilder) emit(f ExternalFolder) {
	b.emitted[f.Path()] = struct{}{}
	b.folders = append(b.folders, f)
}

func (b *FolderBuilder) markBroken(path string, err error) {
	b.broken[path] = struct{}{}
	b.errors = append(b.errors, FolderError{Path: path, Err: err})
}
