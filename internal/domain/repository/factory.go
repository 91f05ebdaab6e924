package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Admins() AdminRepository
	Returns() ReturnRepository
	Policies() PolicyRepository
	Close() error
}
