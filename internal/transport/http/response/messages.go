package response

// User-facing message texts. Kept in one place so the api and admin surfaces
// word failures identically.
const (
	MsgDeletedUser     = "Your account was deleted. You can not login!"
	MsgInvalidPassword = "The password is incorrect."
	MsgInvalidLogin    = "User does not exist."
	MsgNotLoggedIn     = "You must be logged in to access this section."
	MsgWeakPassword    = "Password must have at least 8 characters and include numbers, lowercase, and uppercase letters."
	MsgLoginTaken      = "Username is already taken!"
	MsgEmailTaken      = "Email is already taken!"
	MsgUserNotFound    = "User not found."
	MsgNoChanges       = "No changes were made."
	MsgUnexpected      = "An unexpected error occurred. Please try again later."
)
