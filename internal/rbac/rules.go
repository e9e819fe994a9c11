package rbac

// RolePermissions is the default policy. Guests hold a token issued at quiz
// start; admins log in with the configured credentials.
var RolePermissions = map[string][]string{
	"guest": {
		"quiz:play",
		"results:view",
		"dashboard:view-own",
	},
	"admin": {
		"*", // everything
	},
}
