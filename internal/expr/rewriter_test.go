package expr

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rewriteUser struct {
	Name  string
	Posts []rewritePost
}

type rewritePost struct {
	Title string
	Likes int
}

func TestReplaceParameterSubstitutesFreeVariable(t *testing.T) {
	userType := reflect.TypeOf(rewriteUser{})
	x := NewParam("x", userType)
	row := NewParam("row", userType)

	body := Property(x, "Name")
	rewritten := ReplaceParameter(body, x, row)

	prop, ok := rewritten.(*Prop)
	require.True(t, ok)
	assert.Same(t, row, prop.Target())

	// The original tree is untouched.
	assert.Same(t, x, body.Target())
}

func TestReplaceParameterSharesUnchangedSubtrees(t *testing.T) {
	userType := reflect.TypeOf(rewriteUser{})
	x := NewParam("x", userType)
	other := NewParam("y", userType)
	row := NewParam("row", userType)

	body := Take(OrderBy(Property(other, "Posts"), "Likes"), 1)
	rewritten := ReplaceParameter(body, x, row)

	// No occurrence of x, so the exact same node comes back.
	assert.Same(t, body, rewritten)
}

func TestReplaceParameterRewritesThroughOperatorChain(t *testing.T) {
	userType := reflect.TypeOf(rewriteUser{})
	x := NewParam("x", userType)
	row := NewParam("row", userType)

	body := Take(OrderByDescending(Property(x, "Posts"), "Likes"), 2)
	rewritten := ReplaceParameter(body, x, row)

	take, ok := rewritten.(*Call)
	require.True(t, ok)
	orderBy, ok := take.Target().(*Call)
	require.True(t, ok)
	prop, ok := orderBy.Target().(*Prop)
	require.True(t, ok)
	assert.Same(t, row, prop.Target())
}

func TestReplaceParameterSkipsShadowingLambda(t *testing.T) {
	userType := reflect.TypeOf(rewriteUser{})
	postType := reflect.TypeOf(rewritePost{})

	x := NewParam("x", userType)
	row := NewParam("row", userType)

	// The nested predicate redeclares a variable with the target's name and
	// type; its scope must stay untouched.
	shadow := NewParam("x", userType)
	predicate := NewLambda(Property(shadow, "Name"), shadow)
	body := WherePred(Property(x, "Posts"), predicate)

	rewritten := ReplaceParameter(body, x, row)

	call, ok := rewritten.(*Call)
	require.True(t, ok)
	prop, ok := call.Target().(*Prop)
	require.True(t, ok)
	assert.Same(t, row, prop.Target(), "free occurrence outside the nested scope is rewritten")
	assert.Same(t, predicate, call.Args()[0], "shadowing lambda is left intact")

	// A nested lambda over a different variable is rewritten inside.
	p := NewParam("p", postType)
	inner := NewLambda(Property(x, "Name"), p)
	body = WherePred(Property(x, "Posts"), inner)
	rewritten = ReplaceParameter(body, x, row)

	call = rewritten.(*Call)
	rewrittenInner, ok := call.Args()[0].(*Lambda)
	require.True(t, ok)
	assert.NotSame(t, inner, rewrittenInner)
	assert.Same(t, row, rewrittenInner.Body().(*Prop).Target())
}

func TestReplaceParameterIdentityNotName(t *testing.T) {
	userType := reflect.TypeOf(rewriteUser{})
	x1 := NewParam("x", userType)
	x2 := NewParam("x", userType)
	row := NewParam("row", userType)

	// Two distinct variables sharing a name: only the designated one moves.
	body := Property(x2, "Name")
	assert.Same(t, body, ReplaceParameter(body, x1, row))
}
