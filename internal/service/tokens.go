package service

import "sitesctl/internal/domain"

// SelectChannelToken picks the delivery token of a channel. A single token
// is used as-is; otherwise the token named defaultToken wins, falling back to
// the channelToken field of the first token.
func SelectChannelToken(tokens []domain.ChannelToken) string {
	if len(tokens) == 0 {
		return ""
	}
	if len(tokens) == 1 && tokens[0].Token != "" {
		return tokens[0].Token
	}
	var token string
	for _, t := range tokens {
		if t.Name == domain.DefaultTokenName {
			token = t.Token
			break
		}
	}
	if token == "" {
		token = tokens[0].ChannelToken
	}
	return token
}
