package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/possuite/backoffice/internal/core/domain"
)

func newTestAuthorizer(f *fixture) *Authorizer {
	return NewAuthorizer(f.repos.Stores, f.repos.Roles, zerolog.Nop())
}

func TestAuthorizer_OwnerOwnedStoresOnly(t *testing.T) {
	f := newFixture()
	mine := f.addStore("owner_a", "Mine")
	theirs := f.addStore("owner_b", "Theirs")
	owner := &domain.Principal{ID: "owner_a", Kind: domain.PrincipalOwner}
	authz := newTestAuthorizer(f)

	if err := authz.Authorize(context.Background(), owner, domain.PermManageInventory, mine.ID); err != nil {
		t.Fatalf("expected owner allowed on own store, got %v", err)
	}
	if err := authz.Authorize(context.Background(), owner, domain.PermManageInventory, theirs.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on foreign store, got %v", err)
	}
	if err := authz.Authorize(context.Background(), owner, domain.PermViewSales, "missing"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on unknown store, got %v", err)
	}
}

func TestAuthorizer_StaffPermissionMembership(t *testing.T) {
	f := newFixture()
	store := f.addStore("owner_a", "Shop")
	role := f.addRole(store.ID, domain.PermViewSales)
	member := f.addStaff(store.ID, role.ID, "cashier@example.com")
	authz := newTestAuthorizer(f)

	if err := authz.Authorize(context.Background(), member.Principal(), domain.PermViewSales, store.ID); err != nil {
		t.Fatalf("expected view_sales allowed, got %v", err)
	}
	if err := authz.Authorize(context.Background(), member.Principal(), domain.PermManageInventory, store.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected manage_inventory denied, got %v", err)
	}
}

func TestAuthorizer_StaffEveryCatalogPermission(t *testing.T) {
	f := newFixture()
	store := f.addStore("owner_a", "Shop")
	granted := []string{domain.PermViewSales, domain.PermViewReports}
	role := f.addRole(store.ID, granted...)
	p := f.addStaff(store.ID, role.ID, "s@example.com").Principal()
	authz := newTestAuthorizer(f)

	set := map[string]bool{}
	for _, g := range granted {
		set[g] = true
	}
	for _, perm := range domain.AllPermissions() {
		err := authz.Authorize(context.Background(), p, perm.Name, store.ID)
		if set[perm.Name] && err != nil {
			t.Errorf("%s: expected allow, got %v", perm.Name, err)
		}
		if !set[perm.Name] && !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("%s: expected ErrForbidden, got %v", perm.Name, err)
		}
	}
}

func TestAuthorizer_StaffOtherStoreDenied(t *testing.T) {
	f := newFixture()
	home := f.addStore("owner_a", "Home")
	other := f.addStore("owner_a", "Other")
	role := f.addRole(home.ID, domain.PermManageInventory)
	member := f.addStaff(home.ID, role.ID, "s@example.com")

	err := newTestAuthorizer(f).Authorize(context.Background(), member.Principal(), domain.PermManageInventory, other.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on other store, got %v", err)
	}
}

func TestAuthorizer_RoleEditTakesEffectOnNextCall(t *testing.T) {
	f := newFixture()
	store := f.addStore("owner_a", "Shop")
	role := f.addRole(store.ID, domain.PermViewSales)
	p := f.addStaff(store.ID, role.ID, "s@example.com").Principal()
	authz := newTestAuthorizer(f)

	if err := authz.Authorize(context.Background(), p, domain.PermManageInventory, store.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected deny before edit, got %v", err)
	}

	perms, _ := domain.NormalizePermissions([]string{domain.PermViewSales, domain.PermManageInventory})
	role.Permissions = perms
	if err := f.repos.Roles.Update(context.Background(), role); err != nil {
		t.Fatalf("update role: %v", err)
	}

	if err := authz.Authorize(context.Background(), p, domain.PermManageInventory, store.ID); err != nil {
		t.Fatalf("expected allow after edit, got %v", err)
	}
}

func TestAuthorizer_FailsClosed(t *testing.T) {
	f := newFixture()
	store := f.addStore("owner_a", "Shop")
	foreign := f.addStore("owner_a", "Foreign")
	foreignRole := f.addRole(foreign.ID, domain.PermViewSales)
	authz := newTestAuthorizer(f)

	cases := map[string]*domain.Principal{
		"nil principal":       nil,
		"missing role":        {ID: "s1", Kind: domain.PrincipalStaff, StoreID: store.ID, RoleID: "gone"},
		"no role":             {ID: "s2", Kind: domain.PrincipalStaff, StoreID: store.ID},
		"role of other store": {ID: "s3", Kind: domain.PrincipalStaff, StoreID: store.ID, RoleID: foreignRole.ID},
		"unknown kind":        {ID: "x", Kind: "robot", StoreID: store.ID},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			if err := authz.Authorize(context.Background(), p, domain.PermViewSales, store.ID); !errors.Is(err, domain.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestAuthorizer_AuthorizeStore(t *testing.T) {
	f := newFixture()
	store := f.addStore("owner_a", "Shop")
	authz := newTestAuthorizer(f)

	staff := &domain.Principal{ID: "s", Kind: domain.PrincipalStaff, StoreID: store.ID}
	if err := authz.AuthorizeStore(context.Background(), staff, store.ID); err != nil {
		t.Fatalf("expected staff scoped to own store, got %v", err)
	}
	if err := authz.AuthorizeStore(context.Background(), staff, "elsewhere"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := authz.AuthorizeStore(context.Background(), staff, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for empty store, got %v", err)
	}
}
