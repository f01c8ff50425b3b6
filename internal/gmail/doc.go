// Package gmail sends invitation emails through the Gmail API.
//
// Messages are composed as raw RFC 2822 text, base64url-encoded, and
// submitted via users.messages.send on behalf of the authenticated user.
package gmail
