// internal/form/forms.go
//
// lincms – Forms subsystem: the catalog.
//
// Context
//   One Definition per admin operation.  Shared fields are built by small
//   constructors so each form reads as a table.  Messages are the user-facing
//   Chinese strings the admin UI displays verbatim.
//
//------------------------------------------------------------------------------

package form

// Patterns.
const (
	patternPassword = `[A-Za-z0-9_*&$#@]{6,22}`
	patternEmail    = `[a-zA-Z0-9_.-]+@[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)*\.[a-zA-Z0-9]{2,6}`
	patternNumberID = `\d{8}`
	patternName     = `[\x{4e00}-\x{9fa5}]{2,5}`
	patternNation   = `[\x{4e00}-\x{9fa5}]{2,8}`
	patternAddress  = `[\x{4e00}-\x{9fa5}A-Za-z0-9]+`
	patternKeyword  = `[\x{4e00}-\x{9fa5}0-9]{2,11}`
	// Mainland mobile prefixes, eleven digits in total.
	patternPhone = `(13[0-9]|14[579]|15[0-35-9]|16[6]|17[0135678]|18[0-9]|19[89])\d{8}`
)

// -----------------------------------------------------------------------------
// Shared fields
// -----------------------------------------------------------------------------

func groupIDField() Field {
	return Integer("group_id", "分组id",
		Required("请输入分组id"),
		NumberRange(1, "分组id必须大于0"),
	)
}

func emailField() Field {
	return String("email", "电子邮件",
		Optional(),
		Regexp(patternEmail, "电子邮箱不符合规范，请输入正确的邮箱"),
	)
}

func newPasswordField(name string) Field {
	return String(name, "新密码",
		Required("新密码不可为空"),
		Regexp(patternPassword, "密码长度必须在6~22位之间，包含字符、数字和 _ "),
		EqualTo("confirm_password", "两次输入的密码不一致，请输入相同的密码"),
	)
}

func confirmPasswordField() Field {
	return String("confirm_password", "确认新密码", Required("请确认密码"))
}

func groupNameField() Field {
	return String("name", "分组名称", Required("请输入分组名称"))
}

func infoField() Field {
	return String("info", "分组描述", Optional())
}

func authsField() Field {
	return List("auths", "权限", Required("请输入auths字段"))
}

func personNameField() Field {
	return String("name", "姓名",
		Required("必须传入姓名"),
		Length(2, 5, "姓名长度必须是2-5位"),
		Regexp(patternName, "请输入正确的姓名"),
	)
}

func dateBound(name, label string) Field {
	return DateTime(name, label).With(ParseDateTime())
}

// resetPasswordFields is the base set ChangePasswordForm extends.
var resetPasswordFields = FieldSet{
	newPasswordField("new_password"),
	confirmPasswordField(),
}

// -----------------------------------------------------------------------------
// Users and groups
// -----------------------------------------------------------------------------

var RegisterForm = MustDefine("register",
	newPasswordField("password"),
	confirmPasswordField(),
	String("nickname", "昵称",
		Required("昵称不可为空"),
		Length(2, 10, "昵称长度必须在2~10之间"),
	),
	groupIDField().With(GroupExists("分组不存在")),
	emailField(),
)

var LoginForm = MustDefine("login",
	String("nickname", "昵称", Required("昵称不可为空")),
	String("password", "密码", Required("密码不可为空")),
)

var ResetPasswordForm = MustDefine("reset_password", resetPasswordFields...)

var ChangePasswordForm = MustDefine("change_password",
	resetPasswordFields.Extend(
		String("old_password", "原密码", Required("不可为空")),
	)...,
)

var NewGroup = MustDefine("new_group",
	groupNameField(),
	infoField(),
	authsField(),
)

var UpdateGroup = MustDefine("update_group",
	groupNameField(),
	infoField(),
)

var DispatchAuths = MustDefine("dispatch_auths",
	groupIDField(),
	authsField(),
)

var DispatchAuth = MustDefine("dispatch_auth",
	groupIDField(),
	String("auth", "权限", Required("请输入auth字段")),
)

var RemoveAuths = MustDefine("remove_auths",
	groupIDField(),
	authsField(),
)

var EventsForm = MustDefine("events",
	groupIDField(),
	List("events", "事件", Required("请输入events字段")),
)

var UpdateInfoForm = MustDefine("update_info",
	emailField(),
)

var UpdateUserInfoForm = MustDefine("update_user_info",
	groupIDField(),
	emailField(),
)

// -----------------------------------------------------------------------------
// Logs
// -----------------------------------------------------------------------------

// LogFindForm: a missing name means every user, a missing bound means no bound.
var LogFindForm = MustDefine("log_find",
	String("name", "用户名", Optional()),
	dateBound("start", "开始时间"),
	dateBound("end", "结束时间"),
)

// -----------------------------------------------------------------------------
// Books
// -----------------------------------------------------------------------------

var BookSearchForm = MustDefine("book_search",
	String("q", "搜索关键字", Required("必须传入搜索关键字")),
)

var CreateOrUpdateBookForm = MustDefine("book",
	String("title", "图书名", Required("必须传入图书名")),
	String("author", "作者", Required("必须传入图书作者")),
	String("summary", "综述", Required("必须传入图书综述")),
	String("image", "插图", Required("必须传入图书插图")),
)

// -----------------------------------------------------------------------------
// Members and input clerks
// -----------------------------------------------------------------------------

// MemberSearchForm: keyword is optional overall, but a supplied keyword must
// satisfy every rule after Optional.
var MemberSearchForm = MustDefine("member_search",
	String("keyword", "搜索关键字",
		Optional(),
		Required("必须传入搜索关键字"),
		Length(2, 11, "搜索关键字长度必须是2-11位数字或汉字"),
		Regexp(patternKeyword, "请输入正确的搜索关键字、数字或汉字"),
	),
	String("lnput", "输入人", Optional()),
	dateBound("start", "开始时间"),
	dateBound("end", "结束时间"),
)

var CreateOrUpdateMemberForm = MustDefine("member",
	String("number_id", "会员号",
		Required("必须传入会员号"),
		Length(8, 8, "会员号长度必须是8位"),
		Regexp(patternNumberID, "请输入正确的会员号"),
	).With(UniqueMemberNumberID("会员号已被注册")),
	personNameField(),
	String("number", "身份证号", Required("必须传入身份证号")),
	String("phone", "手机号",
		Required("必须传入手机号"),
		Length(11, 11, "手机长度必须是11位"),
		Regexp(patternPhone, "请输入正确的手机号"),
	).With(UniqueMemberPhone("手机号已被注册")),
	String("address", "地址",
		Required("必须传入地址"),
		Regexp(patternAddress, "请输入正确的地址"),
	),
	String("nation", "民族",
		Required("必须传入民族"),
		Length(2, 8, "民族长度必须是2-8位"),
		Regexp(patternNation, "请输入正确的民族"),
	),
	String("birthday", "生日", Required("必须传入生日")),
	String("remarks", "备注", Required("必须传入备注")),
	String("lnput", "输入人", Required("必须传入输入人")),
)

var CreateOrUpdateLnputForm = MustDefine("lnput",
	personNameField(),
	String("position", "职位", Optional()),
)

// Catalog lists every definition by ID.
var Catalog = map[string]*Definition{}

func init() {
	for _, d := range []*Definition{
		RegisterForm, LoginForm, ResetPasswordForm, ChangePasswordForm,
		NewGroup, UpdateGroup, DispatchAuths, DispatchAuth, RemoveAuths,
		LogFindForm, EventsForm, UpdateInfoForm, UpdateUserInfoForm,
		BookSearchForm, CreateOrUpdateBookForm,
		MemberSearchForm, CreateOrUpdateMemberForm, CreateOrUpdateLnputForm,
	} {
		Catalog[d.ID] = d
	}
}
