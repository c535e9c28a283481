package contextkeys

type contextKey string

// SessionKey holds the resolved *session.Session on gin and request contexts.
const SessionKey = contextKey("session")

