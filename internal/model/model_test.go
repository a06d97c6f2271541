package model

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoContent = `[{"Id":4,"Name":"Carlos Flores","Edad":23,"Profesion":"ISC"}]`

func TestMarshalUsers_DemoIsStable(t *testing.T) {
	first, err := MarshalUsers(DemoUsers())
	require.NoError(t, err)
	assert.Equal(t, demoContent, first)

	second, err := MarshalUsers(DemoUsers())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMarshalUsers_RoundTrip(t *testing.T) {
	content, err := MarshalUsers(DemoUsers())
	require.NoError(t, err)

	users, err := UnmarshalUsers(content)
	require.NoError(t, err)
	assert.Equal(t, DemoUsers(), users)
}

func TestMarshalUsers_KeepsInputOrder(t *testing.T) {
	users := []User{
		{ID: 9, Name: "Zoe"},
		{ID: 1, Name: "Ana"},
		{ID: 5, Name: "Luis"},
	}
	content, err := MarshalUsers(users)
	require.NoError(t, err)

	back, err := UnmarshalUsers(content)
	require.NoError(t, err)
	require.Len(t, back, 3)
	assert.Equal(t, []int{9, 1, 5}, []int{back[0].ID, back[1].ID, back[2].ID})
}

func TestMarshalUsers_NilIsEmptyArray(t *testing.T) {
	content, err := MarshalUsers(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", content)
}

func TestUnmarshalUsers_Invalid(t *testing.T) {
	_, err := UnmarshalUsers("not json")
	assert.Error(t, err)
}

func TestEnvelope_EncodeDecode(t *testing.T) {
	env := NewUserDataEnvelope("01J9ZQ3V7Y8M5C2K4T6R0W1XAB", demoContent)
	assert.Equal(t, TypeUserData, env.Type)

	b, err := env.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"Id":"01J9ZQ3V7Y8M5C2K4T6R0W1XAB","Type":"UserData","Content":`+strconv.Quote(demoContent)+`}`, string(b))

	back, err := DecodeEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, env, back)
}
