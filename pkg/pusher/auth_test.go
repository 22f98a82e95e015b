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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/semphony/pkg/models"
)

const (
	docKey    = "278d425bdf160c739803"
	docSecret = "7ad3773142a6692b25b8"
)

func TestSignChannel(t *testing.T) {
	assert.Equal(t,
		"58df8b0c36d6982b82c3ecf6b4662e34fe8c25bba48f5369f135bf843651c3a4",
		SignChannel(docSecret, "1234.1234", "private-foobar", ""))

	assert.Equal(t,
		"31935e7d86dba64c2a90aed31fdc61869f9b22ba9d8863bba239c03ca481bc80",
		SignChannel(docSecret, "1234.1234", "presence-foobar", `{"user_id":10,"user_info":{"name":"Mr. Channels"}}`))
}

func TestVerifyAuth(t *testing.T) {
	data := `{"user_id":"3"}`
	token := AuthToken(docKey, docSecret, "1.2", "presence-client.3", data)

	assert.True(t, VerifyAuth(docKey, docSecret, "1.2", "presence-client.3", data, token))
	assert.False(t, VerifyAuth(docKey, docSecret, "1.3", "presence-client.3", data, token), "other socket")
	assert.False(t, VerifyAuth(docKey, docSecret, "1.2", "presence-client.4", data, token), "other channel")
	assert.False(t, VerifyAuth(docKey, docSecret, "1.2", "presence-client.3", `{"user_id":"4"}`, token))
	assert.False(t, VerifyAuth("other-key", docSecret, "1.2", "presence-client.3", data, token))
	assert.False(t, VerifyAuth(docKey, docSecret, "1.2", "presence-client.3", data, "garbage"))
}

func TestChannelData(t *testing.T) {
	data, err := ChannelData(&models.Client{ID: 3, SystemID: 7, Name: "SEM <lab>/1"})
	require.NoError(t, err)

	assert.Equal(t, `{"user_id":"3","user_info":{"client_id":3,"name":"SEM <lab>/1","system_id":7}}`, data)

	var m Member
	require.NoError(t, json.Unmarshal([]byte(data), &m))
	assert.Equal(t, "3", m.UserID)
}
