package util

// Envelope is the JSON shape every endpoint responds with:
// {success, message?, data?, ...}.
type Envelope map[string]any

func Fail(message string) Envelope {
	return Envelope{"success": false, "message": message}
}

func OK(message string) Envelope {
	return Envelope{"success": true, "message": message}
}

func Data(value any) Envelope {
	return Envelope{"success": true, "data": value}
}
