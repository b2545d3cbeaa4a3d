package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	sessionCookieSuffix = "-auth-token"
	base64Prefix        = "base64-"
)

// TokenFromRequest returns the access token from the Authorization header,
// falling back to the browser session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return tokenFromCookies(r.Cookies())
}

// tokenFromCookies reassembles an sb-<ref>-auth-token session cookie, which
// may be split into .0, .1, ... chunks, and extracts its access token.
func tokenFromCookies(cookies []*http.Cookie) string {
	whole := make(map[string]string)
	chunks := make(map[string]map[int]string)

	for _, c := range cookies {
		if !strings.HasPrefix(c.Name, "sb-") {
			continue
		}
		base, idx, chunked := splitChunkName(c.Name)
		if !strings.HasSuffix(base, sessionCookieSuffix) {
			continue
		}
		if !chunked {
			whole[base] = c.Value
			continue
		}
		if chunks[base] == nil {
			chunks[base] = make(map[int]string)
		}
		chunks[base][idx] = c.Value
	}

	names := make([]string, 0, len(whole)+len(chunks))
	for name := range whole {
		names = append(names, name)
	}
	for name := range chunks {
		if _, ok := whole[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		value, ok := whole[name]
		if !ok {
			value = joinChunks(chunks[name])
		}
		if token := accessTokenFromSession(value); token != "" {
			return token
		}
	}
	return ""
}

func splitChunkName(name string) (base string, idx int, chunked bool) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name, 0, false
	}
	n, err := strconv.Atoi(name[dot+1:])
	if err != nil || n < 0 {
		return name, 0, false
	}
	return name[:dot], n, true
}

// joinChunks concatenates chunks 0..n, stopping at the first gap
func joinChunks(parts map[int]string) string {
	var b strings.Builder
	for i := 0; ; i++ {
		part, ok := parts[i]
		if !ok {
			break
		}
		b.WriteString(part)
	}
	return b.String()
}

// accessTokenFromSession decodes a session cookie value. Values are JSON,
// optionally base64url encoded behind a "base64-" prefix, holding either an
// object with access_token or a [access_token, refresh_token, ...] array.
func accessTokenFromSession(value string) string {
	if value == "" {
		return ""
	}

	var raw []byte
	if encoded, ok := strings.CutPrefix(value, base64Prefix); ok {
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if err != nil {
			decoded, err = base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return ""
			}
		}
		raw = decoded
	} else {
		unescaped, err := url.QueryUnescape(value)
		if err != nil {
			unescaped = value
		}
		raw = []byte(unescaped)
	}

	var session struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &session); err == nil && session.AccessToken != "" {
		return session.AccessToken
	}

	var legacy []*string
	if err := json.Unmarshal(raw, &legacy); err == nil && len(legacy) > 0 && legacy[0] != nil {
		return *legacy[0]
	}

	return ""
}
