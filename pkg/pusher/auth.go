/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pusher

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/carverauto/semphony/pkg/models"
)

// SignChannel returns the hex HMAC-SHA256 of socketID:channel[:channelData]
// keyed by secret. channelData is only part of the signed string for
// presence channels.
func SignChannel(secret, socketID, channel, channelData string) string {
	msg := socketID + ":" + channel
	if channelData != "" {
		msg += ":" + channelData
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))

	return hex.EncodeToString(mac.Sum(nil))
}

// AuthToken returns the "<key>:<signature>" value a client presents when
// subscribing.
func AuthToken(key, secret, socketID, channel, channelData string) string {
	return key + ":" + SignChannel(secret, socketID, channel, channelData)
}

// VerifyAuth checks a subscription auth value in constant time.
func VerifyAuth(key, secret, socketID, channel, channelData, auth string) bool {
	gotKey, sig, ok := strings.Cut(auth, ":")
	if !ok || gotKey != key {
		return false
	}

	want := SignChannel(secret, socketID, channel, channelData)

	return hmac.Equal([]byte(sig), []byte(want))
}

// MemberInfo is the user_info of a client's presence membership.
type MemberInfo struct {
	ClientID int64  `json:"client_id"`
	Name     string `json:"name"`
	SystemID int64  `json:"system_id"`
}

// Member is the decoded channel_data of a presence subscription.
type Member struct {
	UserID   string          `json:"user_id"`
	UserInfo json.RawMessage `json:"user_info,omitempty"`
}

type clientMember struct {
	UserID   string     `json:"user_id"`
	UserInfo MemberInfo `json:"user_info"`
}

// ChannelData builds the presence channel_data for client, with slashes and
// HTML characters left unescaped.
func ChannelData(client *models.Client) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(clientMember{
		UserID: strconv.FormatInt(client.ID, 10),
		UserInfo: MemberInfo{
			ClientID: client.ID,
			Name:     client.Name,
			SystemID: client.SystemID,
		},
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
