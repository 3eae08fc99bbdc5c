package splice

import "io/fs"

const (
	UserExecute   Permissions = 0100
	UserWrite     Permissions = 0200
	UserRead      Permissions = 0400
	UserReadWrite Permissions = UserRead + UserWrite

	GroupExecute   Permissions = 0010
	GroupWrite     Permissions = 0020
	GroupRead      Permissions = 0040
	GroupReadWrite Permissions = GroupRead + GroupWrite

	UserAndGroupRead      Permissions = UserRead + GroupRead
	UserAndGroupReadWrite Permissions = UserReadWrite + GroupReadWrite

	OthersExecute   Permissions = 0001
	OthersWrite     Permissions = 0002
	OthersRead      Permissions = 0004
	OthersReadWrite Permissions = OthersRead + OthersWrite

	AllRead      = UserRead + GroupRead + OthersRead
	AllWrite     = UserWrite + GroupWrite + OthersWrite
	AllExecute   = UserExecute + GroupExecute + OthersExecute
	AllReadWrite = UserReadWrite + GroupReadWrite + OthersReadWrite
)

// Permissions for a file, follows the Unix/os.FileMode bit schema.
type Permissions int

// FileMode returns a fs.FileMode for the Permissions
// with fs.ModeDir set if isDir is true.
func (perm Permissions) FileMode(isDir bool) fs.FileMode {
	mode := fs.FileMode(perm) & fs.ModePerm
	if isDir {
		mode |= fs.ModeDir
	}
	return mode
}

func (perm Permissions) Can(p Permissions) bool {
	return perm&p == p
}

func (perm Permissions) CanUserRead() bool  { return perm.Can(UserRead) }
func (perm Permissions) CanUserWrite() bool { return perm.Can(UserWrite) }

// PermissionsFromFileMode returns the permission bits of mode.
func PermissionsFromFileMode(mode fs.FileMode) Permissions {
	return Permissions(mode.Perm())
}

// JoinPermissions returns perm, or defaultPerm if perm is zero.
func JoinPermissions(perm, defaultPerm Permissions) Permissions {
	if perm == 0 {
		return defaultPerm
	}
	return perm
}
