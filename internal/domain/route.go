package domain

import "strings"

// Guard decides who may open a portal route.
type Guard string

const (
	GuardPublic        Guard = "public"
	GuardGuest         Guard = "guest" // login/register: signed-in users are sent home
	GuardAuthenticated Guard = "authenticated"
	GuardAdmin         Guard = "admin"
	GuardPOS           Guard = "pos"
)

type Portal string

const (
	PortalAuth  Portal = "auth"
	PortalShop  Portal = "shop"
	PortalUser  Portal = "user"
	PortalAdmin Portal = "admin"
	PortalPOS   Portal = "pos"
)

// Route is one client view. Integrated is false for views that have no
// backend integration yet; their API calls answer 501.
type Route struct {
	Path       string `json:"path"`
	Portal     Portal `json:"portal"`
	View       string `json:"view"`
	Guard      Guard  `json:"guard"`
	Integrated bool   `json:"integrated"`
	API        string `json:"api,omitempty"`
}

var Routes = []Route{
	{Path: "/login", Portal: PortalAuth, View: "Login", Guard: GuardGuest, Integrated: true, API: "/api/v1/auth/login"},
	{Path: "/register", Portal: PortalAuth, View: "Register", Guard: GuardGuest, Integrated: true, API: "/api/v1/auth/register"},

	{Path: "/shop", Portal: PortalShop, View: "ShopLanding", Guard: GuardPublic, Integrated: true, API: "/api/v1/shop/products"},
	{Path: "/shop/products/:id", Portal: PortalShop, View: "ProductDetail", Guard: GuardPublic, Integrated: true, API: "/api/v1/shop/products/{id}"},
	{Path: "/shop/cart", Portal: PortalShop, View: "Cart", Guard: GuardAuthenticated, Integrated: true, API: "/api/v1/cart"},
	{Path: "/shop/checkout", Portal: PortalShop, View: "Checkout", Guard: GuardAuthenticated, Integrated: true, API: "/api/v1/checkout"},

	{Path: "/user", Portal: PortalUser, View: "UserHome", Guard: GuardAuthenticated, Integrated: true, API: "/api/v1/auth/me"},
	{Path: "/user/profile", Portal: PortalUser, View: "UserProfile", Guard: GuardAuthenticated, Integrated: true, API: "/api/v1/user/profile"},

	{Path: "/admin", Portal: PortalAdmin, View: "AdminDashboard", Guard: GuardAdmin, API: "/api/v1/admin/dashboard"},
	{Path: "/admin/products", Portal: PortalAdmin, View: "AdminProducts", Guard: GuardAdmin, Integrated: true, API: "/api/v1/shop/products"},
	{Path: "/admin/products/new", Portal: PortalAdmin, View: "AdminProductForm", Guard: GuardAdmin, Integrated: true, API: "/api/v1/admin/products/drafts"},
	{Path: "/admin/products/:id", Portal: PortalAdmin, View: "AdminProductDetail", Guard: GuardAdmin, Integrated: true, API: "/api/v1/shop/products/{id}"},
	{Path: "/admin/products/:id/edit", Portal: PortalAdmin, View: "AdminProductForm", Guard: GuardAdmin, Integrated: true, API: "/api/v1/admin/products/{id}/drafts"},
	{Path: "/admin/categories", Portal: PortalAdmin, View: "AdminCategories", Guard: GuardAdmin, Integrated: true, API: "/api/v1/admin/categories"},
	{Path: "/admin/brands", Portal: PortalAdmin, View: "AdminBrands", Guard: GuardAdmin, Integrated: true, API: "/api/v1/admin/brands"},
	{Path: "/admin/orders", Portal: PortalAdmin, View: "AdminOrders", Guard: GuardAdmin, API: "/api/v1/admin/orders"},
	{Path: "/admin/customers", Portal: PortalAdmin, View: "AdminCustomers", Guard: GuardAdmin, API: "/api/v1/admin/customers"},
	{Path: "/admin/staff", Portal: PortalAdmin, View: "AdminStaff", Guard: GuardAdmin, API: "/api/v1/admin/staff"},
	{Path: "/admin/settings", Portal: PortalAdmin, View: "AdminSettings", Guard: GuardAdmin, API: "/api/v1/admin/settings"},
	{Path: "/admin/warehouse", Portal: PortalAdmin, View: "AdminWarehouse", Guard: GuardAdmin, API: "/api/v1/admin/warehouse"},

	{Path: "/pos/sales", Portal: PortalPOS, View: "POSSales", Guard: GuardPOS, API: "/api/v1/pos/sales"},
	{Path: "/pos/orders", Portal: PortalPOS, View: "POSOrders", Guard: GuardPOS, API: "/api/v1/pos/orders"},
	{Path: "/pos/inventory", Portal: PortalPOS, View: "POSInventory", Guard: GuardPOS, API: "/api/v1/pos/inventory"},
	{Path: "/pos/returns", Portal: PortalPOS, View: "POSReturns", Guard: GuardPOS, API: "/api/v1/pos/returns"},
	{Path: "/pos/cashbook", Portal: PortalPOS, View: "POSCashbook", Guard: GuardPOS, API: "/api/v1/pos/cashbook"},
}

// StubRoutes lists the routes whose API is not integrated yet.
func StubRoutes() []Route {
	var out []Route
	for _, r := range Routes {
		if !r.Integrated {
			out = append(out, r)
		}
	}
	return out
}

// HomeFor is where a signed-in user lands.
func HomeFor(s *Session) string {
	if s.IsAdmin() {
		return "/admin"
	}
	return "/shop"
}

// Check returns nil when s may open a route guarded by g. A non-empty
// redirect tells the client where to go instead.
func (g Guard) Check(s *Session, posOpen bool) (redirect string, err error) {
	switch g {
	case GuardPublic:
		return "", nil
	case GuardGuest:
		if s.Authenticated() {
			return HomeFor(s), nil
		}
		return "", nil
	case GuardAuthenticated:
		if !s.Authenticated() {
			return "/login", ErrUnauthorized
		}
		return "", nil
	case GuardAdmin:
		if !s.Authenticated() {
			return "/login", ErrUnauthorized
		}
		if !s.IsAdmin() {
			return HomeFor(s), ErrForbidden
		}
		return "", nil
	case GuardPOS:
		if posOpen {
			return "", nil
		}
		if !s.Authenticated() {
			return "/login", ErrUnauthorized
		}
		if !s.CanUsePOS() {
			return HomeFor(s), ErrForbidden
		}
		return "", nil
	}
	return "", ErrForbidden
}

// MatchRoute finds the route for path. ":name" segments capture parameters.
func MatchRoute(path string) (Route, map[string]string, bool) {
	segs := splitPath(path)
	for _, r := range Routes {
		pattern := splitPath(r.Path)
		if len(pattern) != len(segs) {
			continue
		}
		params := map[string]string{}
		ok := true
		for i, p := range pattern {
			if strings.HasPrefix(p, ":") {
				params[p[1:]] = segs[i]
				continue
			}
			if p != segs[i] {
				ok = false
				break
			}
		}
		if ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Resolution is the answer to "may this session open path".
type Resolution struct {
	Route    Route             `json:"route"`
	Params   map[string]string `json:"params,omitempty"`
	Allowed  bool              `json:"allowed"`
	Redirect string            `json:"redirect,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

func ResolveRoute(path string, s *Session, posOpen bool) (Resolution, error) {
	r, params, ok := MatchRoute(path)
	if !ok {
		return Resolution{}, ErrNotFound
	}
	res := Resolution{Route: r, Params: params}
	redirect, err := r.Guard.Check(s, posOpen)
	res.Redirect = redirect
	if err != nil {
		res.Reason = err.Error()
		return res, nil
	}
	res.Allowed = redirect == ""
	return res, nil
}
