package form

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/lincms/internal/acl"
	"github.com/yanizio/lincms/internal/member"
)

// fakeLookup records how often persistence was consulted.
type fakeLookup struct {
	groups   map[int64]*acl.Group
	byNumber map[string]*member.Member
	byPhone  map[string]*member.Member
	err      error
	calls    int
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		groups:   map[int64]*acl.Group{1: {ID: 1, Name: "editors"}},
		byNumber: map[string]*member.Member{},
		byPhone:  map[string]*member.Member{},
	}
}

func (f *fakeLookup) FindGroupByID(_ context.Context, id int64) (*acl.Group, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.groups[id], nil
}

func (f *fakeLookup) FindActiveMemberByNumberID(_ context.Context, n string) (*member.Member, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byNumber[n], nil
}

func (f *fakeLookup) FindActiveMemberByPhone(_ context.Context, p string) (*member.Member, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byPhone[p], nil
}

func validMember() Payload {
	return Payload{
		"number_id": "12345678",
		"name":      "张三",
		"number":    "110101199001011234",
		"phone":     "13812345678",
		"address":   "北京市海淀区",
		"nation":    "汉族",
		"birthday":  "1990-01-01",
		"remarks":   "无",
		"lnput":     "李四",
	}
}

func validRegister() Payload {
	return Payload{
		"nickname":         "pedro",
		"password":         "123456",
		"confirm_password": "123456",
		"group_id":         "1",
	}
}

func fieldMessage(t *testing.T, err error, field string) FieldError {
	t.Helper()
	ve, ok := AsValidationError(err)
	require.True(t, ok, "expected *ValidationError, got %v", err)
	fe, ok := ve.Field(field)
	require.True(t, ok, "no error recorded for %q: %v", field, ve)
	return fe
}

func TestRequiredBlankSkipsLookups(t *testing.T) {
	look := newFakeLookup()
	in := validRegister()
	in["password"] = "   "

	_, err := Validate(context.Background(), RegisterForm, in, look)
	assert.Equal(t, "新密码不可为空", fieldMessage(t, err, "password").Message)
	assert.Zero(t, look.calls)
}

func TestEqualTo(t *testing.T) {
	in := validRegister()
	in["confirm_password"] = "1234567"

	_, err := Validate(context.Background(), RegisterForm, in, newFakeLookup())
	assert.Equal(t, "两次输入的密码不一致，请输入相同的密码", fieldMessage(t, err, "password").Message)
}

func TestPhoneRules(t *testing.T) {
	cases := []struct {
		phone string
		msg   string
	}{
		{"13812345678", ""},
		{"15012345678", ""},
		{"19912345678", ""},
		{"1381234567", "手机长度必须是11位"},
		{"138123456789", "手机长度必须是11位"},
		{"15412345678", "请输入正确的手机号"},
		{"12012345678", "请输入正确的手机号"},
		{"1501234567a", "请输入正确的手机号"},
	}
	for _, tc := range cases {
		t.Run(tc.phone, func(t *testing.T) {
			in := validMember()
			in["phone"] = tc.phone
			_, err := Validate(context.Background(), CreateOrUpdateMemberForm, in, newFakeLookup())
			if tc.msg == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.msg, fieldMessage(t, err, "phone").Message)
		})
	}
}

func TestNumberIDLengthBeforeLookup(t *testing.T) {
	look := newFakeLookup()
	in := validMember()
	in["number_id"] = "1234567"

	_, err := Validate(context.Background(), CreateOrUpdateMemberForm, in, look)
	assert.Equal(t, "会员号长度必须是8位", fieldMessage(t, err, "number_id").Message)
	assert.Zero(t, look.calls, "no lookup may run for intrinsically invalid input")
}

func TestMemberUniqueness(t *testing.T) {
	look := newFakeLookup()
	look.byNumber["12345678"] = &member.Member{ID: 5, NumberID: "12345678"}

	_, err := Validate(context.Background(), CreateOrUpdateMemberForm, validMember(), look)
	fe := fieldMessage(t, err, "number_id")
	assert.Equal(t, "会员号已被注册", fe.Message)
	assert.Equal(t, KindConflict, fe.Kind)

	ve, _ := AsValidationError(err)
	assert.True(t, ve.Conflict())
	_, phoneFailed := ve.Field("phone")
	assert.False(t, phoneFailed)
}

func TestMemberUniqueness_PhoneTaken(t *testing.T) {
	look := newFakeLookup()
	look.byPhone["13812345678"] = &member.Member{ID: 9, Phone: "13812345678"}

	_, err := Validate(context.Background(), CreateOrUpdateMemberForm, validMember(), look)
	assert.Equal(t, "手机号已被注册", fieldMessage(t, err, "phone").Message)
}

func TestMemberUniqueness_SoftDeletedFree(t *testing.T) {
	// The store only reports live rows, so a deleted holder comes back nil.
	vals, err := Validate(context.Background(), CreateOrUpdateMemberForm, validMember(), newFakeLookup())
	require.NoError(t, err)
	assert.Equal(t, "12345678", vals.String("number_id"))
	assert.Equal(t, "13812345678", vals.String("phone"))
}

func TestMemberUniqueness_ExcludeSelf(t *testing.T) {
	look := newFakeLookup()
	look.byNumber["12345678"] = &member.Member{ID: 5}
	look.byPhone["13812345678"] = &member.Member{ID: 5}

	_, err := Validate(context.Background(), CreateOrUpdateMemberForm, validMember(), look, ExcludeMember(5))
	assert.NoError(t, err)

	_, err = Validate(context.Background(), CreateOrUpdateMemberForm, validMember(), look, ExcludeMember(6))
	assert.Error(t, err)
}

func TestLookupFailureIsNotValidation(t *testing.T) {
	look := newFakeLookup()
	look.err = errors.New("connection refused")

	_, err := Validate(context.Background(), CreateOrUpdateMemberForm, validMember(), look)
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
	assert.ErrorIs(t, err, look.err)
}

func TestOptionalEmail(t *testing.T) {
	for _, email := range []string{"", "   "} {
		vals, err := Validate(context.Background(), UpdateInfoForm, Payload{"email": email}, nil)
		require.NoError(t, err)
		assert.False(t, vals.Has("email"))
	}

	vals, err := Validate(context.Background(), UpdateInfoForm, Payload{}, nil)
	require.NoError(t, err)
	assert.False(t, vals.Has("email"))

	for _, email := range []string{"a@b.co", "a.b@example.com"} {
		vals, err = Validate(context.Background(), UpdateInfoForm, Payload{"email": email}, nil)
		require.NoError(t, err)
		assert.Equal(t, email, vals.String("email"))
	}

	_, err = Validate(context.Background(), UpdateInfoForm, Payload{"email": "not-an-email"}, nil)
	assert.Equal(t, "电子邮箱不符合规范，请输入正确的邮箱", fieldMessage(t, err, "email").Message)
}

func TestLogFindDates(t *testing.T) {
	_, err := Validate(context.Background(), LogFindForm, Payload{"start": "2018-13-40 09:39:35"}, nil)
	assert.Contains(t, fieldMessage(t, err, "start").Message, "month out of range")

	vals, err := Validate(context.Background(), LogFindForm, Payload{}, nil)
	require.NoError(t, err)
	_, ok := vals.Time("start")
	assert.False(t, ok)

	vals, err = Validate(context.Background(), LogFindForm, Payload{
		"name":  "pedro",
		"start": "2018-11-01 09:39:35",
		"end":   "",
	}, nil)
	require.NoError(t, err)
	start, ok := vals.Time("start")
	require.True(t, ok)
	assert.Equal(t, 2018, start.Year())
	assert.Equal(t, 39, start.Minute())
	assert.False(t, vals.Has("end"))
	assert.Equal(t, "pedro", vals.String("name"))
}

func TestGroupID(t *testing.T) {
	cases := []struct {
		in  any
		msg string
	}{
		{"1", ""},
		{"0", "分组id必须大于0"},
		{"-3", "分组id必须大于0"},
		{"abc", "不是有效的整数"},
		{"", "请输入分组id"},
		{"999", "分组不存在"},
	}
	for _, tc := range cases {
		in := validRegister()
		in["group_id"] = tc.in
		vals, err := Validate(context.Background(), RegisterForm, in, newFakeLookup())
		if tc.msg == "" {
			require.NoError(t, err)
			assert.Equal(t, int64(1), vals.Int("group_id"))
			continue
		}
		assert.Equal(t, tc.msg, fieldMessage(t, err, "group_id").Message, "group_id=%v", tc.in)
	}
}

func TestGroupIDNeedsNoLookupWithoutHook(t *testing.T) {
	vals, err := Validate(context.Background(), UpdateUserInfoForm, Payload{"group_id": "999"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(999), vals.Int("group_id"))
}

func TestCollectsEveryField(t *testing.T) {
	_, err := Validate(context.Background(), CreateOrUpdateBookForm, Payload{"title": "Go"}, nil)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Fields, 3)
	assert.Equal(t, map[string]string{
		"author":  "必须传入图书作者",
		"summary": "必须传入图书综述",
		"image":   "必须传入图书插图",
	}, ve.Messages())
}

func TestListEntries(t *testing.T) {
	vals, err := Validate(context.Background(), NewGroup,
		Payload{"name": "editors", "auths": []any{"查看会员", "删除会员"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"查看会员", "删除会员"}, vals.Strings("auths"))

	_, err = Validate(context.Background(), NewGroup,
		Payload{"name": "editors", "auths": []any{"查看会员", " "}}, nil)
	assert.Equal(t, "请输入auths字段", fieldMessage(t, err, "auths").Message)
}

func TestMemberSearchKeyword(t *testing.T) {
	_, err := Validate(context.Background(), MemberSearchForm, Payload{}, nil)
	assert.NoError(t, err)

	_, err = Validate(context.Background(), MemberSearchForm, Payload{"keyword": "张"}, nil)
	assert.Equal(t, "搜索关键字长度必须是2-11位数字或汉字", fieldMessage(t, err, "keyword").Message)

	_, err = Validate(context.Background(), MemberSearchForm, Payload{"keyword": "ab"}, nil)
	assert.Equal(t, "请输入正确的搜索关键字、数字或汉字", fieldMessage(t, err, "keyword").Message)

	vals, err := Validate(context.Background(), MemberSearchForm, Payload{"keyword": "张三"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "张三", vals.String("keyword"))
}

func TestChangePasswordExtendsReset(t *testing.T) {
	names := func(d *Definition) []string {
		out := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			out[i] = f.Name
		}
		return out
	}
	assert.Equal(t, []string{"new_password", "confirm_password"}, names(ResetPasswordForm))
	assert.Equal(t, []string{"new_password", "confirm_password", "old_password"}, names(ChangePasswordForm))

	_, err := Validate(context.Background(), ChangePasswordForm, Payload{
		"new_password": "abcdef", "confirm_password": "abcdef",
	}, nil)
	assert.Equal(t, "不可为空", fieldMessage(t, err, "old_password").Message)
}

func TestDefineRejectsDuplicates(t *testing.T) {
	_, err := Define("dup", String("a", "A"), String("a", "A again"))
	assert.Error(t, err)

	_, err = Define("", String("a", "A"))
	assert.Error(t, err)

	assert.Panics(t, func() { MustDefine("empty") })
}

func TestCatalog(t *testing.T) {
	assert.Len(t, Catalog, 18)
	assert.Same(t, CreateOrUpdateMemberForm, Catalog["member"])
}

func TestHookWithoutLookup(t *testing.T) {
	_, err := Validate(context.Background(), RegisterForm, validRegister(), nil)
	assert.ErrorIs(t, err, errNoLookup)
}

func TestWrappedHookErrorStaysValidation(t *testing.T) {
	def := MustDefine("wrapped",
		String("code", "Code", Required("不可为空")).With(
			func(context.Context, Value, *Pass) error {
				return fmt.Errorf("lookup code: %w", Conflict("编码已存在"))
			}))

	_, err := Validate(context.Background(), def, Payload{"code": "x1"}, nil)
	ve, ok := AsValidationError(err)
	require.True(t, ok, "got %v", err)
	fe, _ := ve.Field("code")
	assert.Equal(t, "编码已存在", fe.Message)
	assert.Equal(t, KindConflict, fe.Kind)
}
