package auth

import "github.com/losclub/community-surveys/internal/domain"

// Authorization decisions are pure functions over the already-resolved user
// and the target resource, so the rules can change without touching call
// sites. A failing check surfaces as Forbidden, never as silent filtering.

// CanListAllSurveys gates the listing endpoints.
func CanListAllSurveys(u *domain.User) bool {
	return u.IsAdmin()
}

// CanMutateSurveyStructure gates question create/update/delete and survey
// delete. Authorship is recorded on surveys and questions but does not grant
// mutation rights; only admins hold them.
func CanMutateSurveyStructure(u *domain.User) bool {
	return u.IsAdmin()
}

// CanWriteResponse allows a user to create, edit, or delete only their own
// responses, regardless of account type.
func CanWriteResponse(u *domain.User, responderEmail string) bool {
	return u.Email == responderEmail
}

// CanReadResponse allows admins and the responder themselves.
func CanReadResponse(u *domain.User, responderEmail string) bool {
	return u.IsAdmin() || u.Email == responderEmail
}
